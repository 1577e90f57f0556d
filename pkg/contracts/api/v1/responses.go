package api

// Response status values
const (
	StatusSuccess = "success"
)

// Response is the envelope for every successful API response.
type Response struct {
	Status string       `json:"status"`
	Data   interface{}  `json:"data"`
	Count  *int         `json:"count,omitempty"`
	Window *CAGRRequest `json:"window,omitempty"`
}

// Success wraps a single object.
func Success(data interface{}) Response {
	return Response{Status: StatusSuccess, Data: data}
}

// List wraps a collection together with its length.
func List(data interface{}, count int) Response {
	return Response{Status: StatusSuccess, Data: data, Count: &count}
}
