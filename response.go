package givehub

// Response is a decoded JSON object returned by the API. Payload shapes are
// owned by the server, so values are kept as decoded by encoding/json.
type Response map[string]any

// Success reports the business-level "success" flag. Responses without the
// flag report false.
func (r Response) Success() bool {
	v, _ := r["success"].(bool)
	return v
}

// String returns the string value at key, or "" when absent or not a string.
func (r Response) String(key string) string {
	v, _ := r[key].(string)
	return v
}

// Object returns the nested object at key, or nil.
func (r Response) Object(key string) Response {
	v, _ := r[key].(map[string]any)
	return v
}

// ID returns the "id" field, falling back to "_id".
func (r Response) ID() string {
	if id := r.String("id"); id != "" {
		return id
	}

	return r.String("_id")
}
