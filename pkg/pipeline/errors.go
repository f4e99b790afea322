package pipeline

import "errors"

// ErrRetrieval marks embedding-provider or index failures during the
// knowledge path. Terminal for the request; no partial answer is
// synthesized.
var ErrRetrieval = errors.New("retrieval failed")
