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

// Package cor (Chain of Responsibility) provides the building blocks for the
// analysis pipeline: commands as atomic units of work, chains that pipe one
// command's output into the next, and a shared context that carries data,
// errors and job progress across a single pipeline execution.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the keys used for the primary data flow within a
// chain: after each command runs, the value it stored under CtxOut becomes
// the next command's CtxIn.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// ProgressFunc publishes a coarse progress milestone for the job that owns
// this pipeline run. Implementations must be safe to call from worker
// goroutines spawned by commands.
type ProgressFunc func(progress int, message string)

// Context is the shared state object passed through a chain of commands. It
// acts as a property bag for a single pipeline execution, carrying data,
// errors and the job progress reporter between commands.
type Context interface {
	// SetContext sets the standard Go context used for cancellation and
	// trace propagation.
	SetContext(ctx context.Context)

	// GetContext retrieves the standard Go context.
	GetContext() context.Context

	// Add stores a key-value pair. Returns the Context for chaining.
	Add(key string, value interface{}) Context

	// Get retrieves a value by key, or nil.
	Get(key string) interface{}

	// Remove deletes a key-value pair.
	Remove(key string)

	// AddError records an error under the name of the command that produced it.
	AddError(key string, err error)

	// GetErrors returns all errors collected during the pipeline run.
	GetErrors() map[string]error

	// HasErrors reports whether any command recorded an error.
	HasErrors() bool

	// FirstError returns one recorded error, or nil. Chains stop at the
	// first failure by default, so in practice there is at most one.
	FirstError() error

	// SetProgressFunc installs the job progress reporter for this run.
	SetProgressFunc(fn ProgressFunc)

	// ReportProgress publishes a progress milestone. A no-op when no
	// reporter is installed, so commands can report unconditionally.
	ReportProgress(progress int, message string)
}

// Executable is any object with a core execution step.
type Executable interface {
	Execute(context Context)
}

// Command is an atomic, testable unit of work and the fundamental building
// block of a pipeline.
type Command interface {
	Executable

	// GetName returns the command name used for logging and telemetry.
	GetName() string

	// GetInputParam returns the context key the command reads its primary
	// input from.
	GetInputParam() string

	// GetOutputParam returns the context key the command writes its primary
	// output to.
	GetOutputParam() string

	// IsExecutable checks preconditions against the current context state.
	IsExecutable(context Context) bool

	// GetTracer returns the OpenTelemetry tracer for this command.
	GetTracer() trace.Tracer

	// GetMeter returns the OpenTelemetry meter for this command.
	GetMeter() metric.Meter

	// GetSuccessCounter returns the counter incremented on success.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns the counter incremented on failure.
	GetErrorCounter() metric.Int64Counter
}

// Chain is a sequence of commands. A Chain is itself a Command, so chains
// can be nested.
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing after
	// a command records an error. Defaults to stopping.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
