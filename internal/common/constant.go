package common

// ContentTypeJSON is the media type used for every request and response body
// exchanged with the remote auth service.
const ContentTypeJSON = "application/json"

// HeaderContentType is the HTTP header carrying the body media type.
const HeaderContentType = "Content-Type"
