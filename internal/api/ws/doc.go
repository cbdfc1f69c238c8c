// Package ws serves the execution bridge over a WebSocket.
//
// Every connection gets a dedicated worker and client, so interpreter
// state lives exactly as long as the connection. Messages use the bridge
// wire shape:
//
//	-> {"id": 1, "type": "init"}
//	<- {"id": 1, "type": "init-complete"}
//	-> {"id": 2, "type": "execute", "sourceCode": "print(1)"}
//	<- {"id": 2, "output": "1\n", "executionTimeMs": 3.2}
//
// Replies carry the id of the message they answer. A worker that ignores
// the cancellation signal is replaced and re-initialized in place.
package ws
