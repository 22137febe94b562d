package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// maxRequestBody caps the request body size for every payload format. A scan
// encodes to well under 200 bytes, a registration to under 1 KiB.
const maxRequestBody = 4096

// isProtobuf returns true if the request's Content-Type indicates a
// protobuf payload. ESP32 readers send "application/x-protobuf".
func isProtobuf(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	switch mt {
	case "application/x-protobuf", "application/protobuf", "application/octet-stream":
		return true
	}
	return false
}

// readProtoFields decodes a google.protobuf.Struct body into plain Go values.
func readProtoFields(r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxRequestBody {
		return nil, fmt.Errorf("body exceeds %d bytes", maxRequestBody)
	}
	var msg structpb.Struct
	if err := proto.Unmarshal(body, &msg); err != nil {
		return nil, err
	}
	return msg.AsMap(), nil
}

// writeProto encodes v as a google.protobuf.Struct, going through its JSON
// form so field names match the JSON responses.
func writeProto(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	msg, err := structpb.NewStruct(m)
	if err != nil {
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
