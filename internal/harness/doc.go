// Package harness provides conformance testing for the sorting engine.
//
// The harness loads scenarios, drives a real controller through them, and
// checks the resulting event trace, counters, and stored run record.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: bubble_pause_resume
//	description: "Pausing mid-run loses no events"
//	algorithm: bubble
//	input: [5, 1, 4, 2, 8]
//	commands:
//	  - at: 3
//	    action: pause
//	  - action: resume
//	expect:
//	  outcome: completed
//	  output: [1, 2, 4, 5, 8]
//	  comparisons: 10
//	  swaps: 4
//	assertions:
//	  - type: trace_count
//	    step: compare
//	    count: 10
//	  - type: trace_order
//	    steps: ["compare 0 1", pause, resume, done]
//	  - type: final_state
//	    expect: { outcome: completed, events: 15 }
//
// # Commands
//
// A command with "at: N" is applied right after event N is delivered.
// Events are delivered synchronously on the driver path, so the position of
// a command in the trace does not depend on timing:
//
//   - pause: holds the driver at its next checkpoint
//   - resume: releases a pause; it must directly follow one and is applied
//     once the driver is parked
//   - stop: requests cancellation
//   - speed: sets the delay of a 1..100 speed value
//
// # Assertion Types
//
// Trace lines are labelled "compare I J", "mutate I J", "done", or the name
// of a command. A pattern of one word matches every line of that kind.
//
//   - trace_contains: a line matching step appears
//   - trace_order: lines matching steps appear in that order, not
//     necessarily adjacent
//   - trace_count: exactly count lines match step
//   - final_state: the stored run record has the expected field values
//
// # Deterministic Testing
//
// Every scenario runs with a fixed run ID, a clock that advances by a fixed
// tick per read, zero step delay, and an in-memory SQLite store, so repeated
// runs produce byte-identical traces for golden comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/bubble.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
