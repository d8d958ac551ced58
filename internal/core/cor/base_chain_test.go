// Copyright 2025 WalkGen AI, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appendCommand writes its name onto the value flowing through the chain so a
// test can observe execution order and the CtxOut -> CtxIn flip-flop.
type appendCommand struct {
	BaseCommand
	fail error
}

func newAppendCommand(name string, fail error) *appendCommand {
	return &appendCommand{BaseCommand: *NewBaseCommand(name), fail: fail}
}

// IsExecutable only needs a Go context here: the trail input is allowed to be
// absent after an upstream failure cleared it.
func (c *appendCommand) IsExecutable(ctx Context) bool {
	return ctx != nil && ctx.GetContext() != nil
}

func (c *appendCommand) Execute(ctx Context) {
	if c.fail != nil {
		ctx.AddError(c.GetName(), c.fail)
		return
	}
	trail, _ := ctx.Get(CtxIn).(string)
	ctx.Add(CtxOut, trail+c.GetName()+";")
}

func newChainContext() Context {
	ctx := NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(CtxIn, "")
	return ctx
}

func TestChainPipesOutputToNextCommand(t *testing.T) {
	chain := NewBaseChain("pipe-test")
	chain.AddCommand(newAppendCommand("first", nil))
	chain.AddCommand(newAppendCommand("second", nil))
	chain.AddCommand(newAppendCommand("third", nil))

	ctx := newChainContext()
	chain.Execute(ctx)

	require.False(t, ctx.HasErrors())
	assert.Equal(t, "first;second;third;", ctx.Get(CtxIn))
	assert.Nil(t, ctx.Get(CtxOut))
}

func TestChainStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	chain := NewBaseChain("halt-test")
	chain.AddCommand(newAppendCommand("first", nil))
	chain.AddCommand(newAppendCommand("second", boom))
	chain.AddCommand(newAppendCommand("third", nil))

	ctx := newChainContext()
	chain.Execute(ctx)

	require.True(t, ctx.HasErrors())
	assert.ErrorIs(t, ctx.FirstError(), boom)
	// The failed command produced no output, so the input slot was cleared
	// and the third command never ran.
	assert.Nil(t, ctx.Get(CtxIn))
}

func TestChainContinueOnFailure(t *testing.T) {
	chain := NewBaseChain("continue-test")
	chain.ContinueOnFailure(true)
	chain.AddCommand(newAppendCommand("first", errors.New("boom")))
	chain.AddCommand(newAppendCommand("second", nil))

	ctx := newChainContext()
	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Equal(t, "second;", ctx.Get(CtxIn))
}

func TestContextProgressReporting(t *testing.T) {
	ctx := NewBaseContext()

	var gotProgress int
	var gotMessage string
	ctx.SetProgressFunc(func(progress int, message string) {
		gotProgress = progress
		gotMessage = message
	})

	ctx.ReportProgress(45, "Normalizing transcript")
	assert.Equal(t, 45, gotProgress)
	assert.Equal(t, "Normalizing transcript", gotMessage)

	// A context without a progress func must not panic.
	NewBaseContext().ReportProgress(10, "ignored")
}
