/*
Package views tracks the disclosure state of mounted topic pages.

Mounting a topic creates a view with every section collapsed. The view
remembers a fingerprint of the intro text it was built from; whenever an
operation finds that the topic's intro changed (for example after the
registry was reloaded) the view re-parses it and starts over collapsed.
Unmounting discards the state.
*/
package views
