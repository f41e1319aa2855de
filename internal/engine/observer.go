package engine

import "github.com/roach88/sortviz/internal/ir"

// Observer receives the lifecycle of every run.
//
// OnStart is called on the run's execution path before the first step.
// OnStep is called once per delivered event, in emission order, from a single
// goroutine. OnFinish is called exactly once per run after the last OnStep,
// whatever the outcome.
//
// Observers must not call the blocking Controller methods (Stop, Start, Load)
// from a callback; RequestStop, Pause and Resume are safe.
type Observer interface {
	OnStart(info ir.RunInfo)
	OnStep(e ir.StepEvent)
	OnFinish(r ir.Result)
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) OnStart(ir.RunInfo)  {}
func (NopObserver) OnStep(ir.StepEvent) {}
func (NopObserver) OnFinish(ir.Result)  {}

// ObserverFuncs adapts optional callbacks to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Start  func(ir.RunInfo)
	Step   func(ir.StepEvent)
	Finish func(ir.Result)
}

func (f ObserverFuncs) OnStart(info ir.RunInfo) {
	if f.Start != nil {
		f.Start(info)
	}
}

func (f ObserverFuncs) OnStep(e ir.StepEvent) {
	if f.Step != nil {
		f.Step(e)
	}
}

func (f ObserverFuncs) OnFinish(r ir.Result) {
	if f.Finish != nil {
		f.Finish(r)
	}
}

// Observers fans out to each observer in order.
type Observers []Observer

func (os Observers) OnStart(info ir.RunInfo) {
	for _, o := range os {
		o.OnStart(info)
	}
}

func (os Observers) OnStep(e ir.StepEvent) {
	for _, o := range os {
		o.OnStep(e)
	}
}

func (os Observers) OnFinish(r ir.Result) {
	for _, o := range os {
		o.OnFinish(r)
	}
}
