package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/service"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

var errBadBody = errors.New("request body could not be decoded")

// readFields decodes a JSON object, form post or protobuf Struct body into a
// field map. The formats are interchangeable.
func readFields(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	if isProtobuf(r) {
		fields, err := readProtoFields(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errBadBody, err)
		}
		return fields, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mt {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if mt == "multipart/form-data" {
			if err := r.ParseMultipartForm(maxRequestBody); err != nil {
				return nil, fmt.Errorf("%w: %v", errBadBody, err)
			}
		} else if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadBody, err)
		}
		fields := make(map[string]any, len(r.PostForm))
		for k, vs := range r.PostForm {
			if len(vs) > 0 {
				fields[k] = vs[0]
			}
		}
		return fields, nil
	default:
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		var fields map[string]any
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadBody, err)
		}
		if dec.Decode(&struct{}{}) != io.EOF {
			return nil, fmt.Errorf("%w: trailing data", errBadBody)
		}
		if fields == nil {
			return nil, fmt.Errorf("%w: expected an object", errBadBody)
		}
		return fields, nil
	}
}

func registerRequestFromFields(fields map[string]any) (types.RegisterRequest, error) {
	var req types.RegisterRequest
	for key, dst := range map[string]*string{
		"tag_id": &req.TagID, "name": &req.Name, "employee_id": &req.EmployeeID,
	} {
		v, err := stringField(fields, key)
		if err != nil {
			return types.RegisterRequest{}, err
		}
		if v != nil {
			*dst = *v
		}
	}
	for key, dst := range map[string]**string{
		"department": &req.Department, "designation": &req.Designation,
		"phone": &req.Phone, "email": &req.Email,
	} {
		v, err := stringField(fields, key)
		if err != nil {
			return types.RegisterRequest{}, err
		}
		*dst = v
	}
	return req, nil
}

func stringField(fields map[string]any, key string) (*string, error) {
	switch v := fields[key].(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	case json.Number:
		s := v.String()
		return &s, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a string", service.ErrMalformedField, key)
	}
}

func queryBool(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", service.ErrMalformedField, key)
	}
	return b, nil
}
