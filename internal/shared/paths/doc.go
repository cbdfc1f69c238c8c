// Package paths provides the on-disk cache layout.
//
//	<user cache>/pylearn/
//	  ├── python/          (interpreter distributions, one dir per version)
//	  └── wasm-compiled/   (wazero compilation cache)
//
// Confine guards archive extraction against entries that would land
// outside their destination.
package paths
