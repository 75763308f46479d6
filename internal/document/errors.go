package document

import "errors"

// ErrServerBehind is returned when a client's stated version exceeds the
// server's (the client has seen a version the server never emitted) or is
// negative.
var ErrServerBehind = errors.New("document: client version ahead of server")

// ErrDocumentCorrupted is returned when applying a transformed change
// would leave the document containing non-insert ops. The actor's state is
// left unchanged when this occurs.
var ErrDocumentCorrupted = errors.New("document: transformed change would corrupt contents")
