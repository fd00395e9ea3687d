// Package script holds per-isolate script state and the filter runner.
//
// Script is the minimal anchor tying script execution to an isolate.
// Runner and Filter supply the one script feature the engine ships with:
// wasm filter programs evaluated against packet frames, executed with
// wazero so embedders need no native toolchain.
package script
