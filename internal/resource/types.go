package resource

import "fmt"

// Status is the lifecycle stage carried by a Resource.
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
)

var statusNames = map[Status]string{
	StatusLoading: "loading",
	StatusSuccess: "success",
	StatusError:   "error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	for k, v := range statusNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown resource status %q", string(b))
}

// Resource is one state of a cache-then-network load.
// Data is nil when absent. Message is only set for StatusError.
type Resource[T any] struct {
	Status  Status `json:"status"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Loading returns a loading state with optional partial data.
func Loading[T any](data *T) Resource[T] {
	return Resource[T]{Status: StatusLoading, Data: data}
}

// Success returns a success state carrying data.
func Success[T any](data T) Resource[T] {
	return Resource[T]{Status: StatusSuccess, Data: &data}
}

// Error returns an error state with optional stale data.
func Error[T any](message string, data *T) Resource[T] {
	return Resource[T]{Status: StatusError, Data: data, Message: message}
}

// APIStatus is the outcome of a single remote fetch.
type APIStatus int

const (
	APISuccess APIStatus = iota
	APIEmpty
	APIError
)

var apiStatusNames = map[APIStatus]string{
	APISuccess: "success",
	APIEmpty:   "empty",
	APIError:   "error",
}

func (s APIStatus) String() string {
	if name, ok := apiStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("api_status(%d)", int(s))
}

// APIResponse is the discriminated result of one remote fetch attempt.
// Empty means the fetch succeeded but returned nothing; it is not an error.
type APIResponse[T any] struct {
	Status  APIStatus
	Data    T
	Message string
}

// SuccessResponse wraps fetched data.
func SuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{Status: APISuccess, Data: data}
}

// EmptyResponse reports a successful fetch with no items.
func EmptyResponse[T any]() APIResponse[T] {
	return APIResponse[T]{Status: APIEmpty}
}

// ErrorResponse reports a failed fetch.
func ErrorResponse[T any](message string) APIResponse[T] {
	return APIResponse[T]{Status: APIError, Message: message}
}
