// Package harness provides conformance testing for tdgen.
//
// The harness runs record-language sources through the full generation
// pipeline and checks the emitted signatures against scenario assertions
// and golden snapshots.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	run_id: test-run-0001
//	config: tdgen.yaml
//	include_dirs: [include]
//	sources:
//	  - name: main.td
//	    text: |
//	      include "prelude.td"
//	      def int_foo : Intrinsic<[llvm_i32_ty], [llvm_anyint_ty]>;
//	files:
//	  - defs/extra.td
//	assertions:
//	  - type: signature
//	    name: llvm.foo.i8
//	    return: i32
//	    params: [i8]
//	  - type: signature_count
//	    intrinsic: int_foo
//	    count: 4
//
// Inline sources are parsed first, in order, followed by files. Paths in
// config, files and include_dirs are relative to the scenario file. An
// include directive naming an inline source resolves to it before the
// filesystem is searched.
//
// # Assertion Types
//
//   - signature: a signature with the given name exists, optionally with the
//     given arch, return type and parameter types
//   - signature_order: the named signatures appear in this relative order
//   - signature_count: exactly count signatures, optionally of one intrinsic
//   - skipped: the record was skipped during extraction
//   - error: the run failed, optionally in the given stage with a message
//     containing the given text
//   - catalog: the signature catalog holds count rows with the given name
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory catalog with a fixed run id
// (scenario.run_id, or "test-run-default"), so golden snapshots are
// byte-identical across runs.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/open_integer.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
