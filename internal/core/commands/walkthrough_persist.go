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

package commands

import (
	"context"
	"fmt"

	"github.com/walkgen-ai/walkgen-go/internal/core/cor"
	"github.com/walkgen-ai/walkgen-go/internal/core/model"
)

// WalkthroughWriter is the persistence surface this command needs from the
// cache store.
type WalkthroughWriter interface {
	Put(ctx context.Context, walkthrough *model.Walkthrough) error
}

// WalkthroughPersist is the final pipeline command. It writes the finished
// walkthrough to the durable cache so later requests for the same video are
// served without re-analysis.
type WalkthroughPersist struct {
	cor.BaseCommand
	writer WalkthroughWriter
}

// NewWalkthroughPersist is the constructor for the WalkthroughPersist command.
func NewWalkthroughPersist(name string, writer WalkthroughWriter) *WalkthroughPersist {
	return &WalkthroughPersist{
		BaseCommand: *cor.NewBaseCommand(name),
		writer:      writer,
	}
}

// Execute saves the walkthrough and pipes it onward unchanged.
func (c *WalkthroughPersist) Execute(context cor.Context) {
	walkthrough := context.Get(c.GetInputParam()).(*model.Walkthrough)

	if err := c.writer.Put(context.GetContext(), walkthrough); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("persist walkthrough %s: %w", walkthrough.Video.VideoId, err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), walkthrough)
}
