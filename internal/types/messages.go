package types

import "time"

// QueryRequest is the body accepted by the question endpoint
type QueryRequest struct {
	Question string `json:"pregunta"`
}

// QueryResponse is the body returned by the question endpoint
type QueryResponse struct {
	Answer string `json:"respuesta"`
}

// DatasetNotice is pushed to websocket clients when the table changes
type DatasetNotice struct {
	Event    string    `json:"event"`
	Rows     int       `json:"rows"`
	LoadedAt time.Time `json:"loadedAt"`
}
