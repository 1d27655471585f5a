package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped only on breaking changes to the envelope shape.
const envelopeVersion = 1

// Envelope wraps every JSON response body.
//
//	{"v":1,"success":true,"data":{...}}
//	{"v":1,"success":false,"error":"book not found","code":"NOT_FOUND",...}
type Envelope struct {
	Version  int    `json:"v"`
	Success  bool   `json:"success"`
	Data     any    `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
	Field    string `json:"field,omitempty"`
	Resource string `json:"resource,omitempty"`
	Details  any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma transformer that wraps response bodies in an
// Envelope. Errors produced by RegisterErrorHandler become failure envelopes.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return &Envelope{
			Version:  envelopeVersion,
			Success:  false,
			Error:    apiErr.Message,
			Code:     apiErr.Code,
			Message:  apiErr.Message,
			Field:    apiErr.Field,
			Resource: apiErr.Resource,
			Details:  apiErr.Details,
		}, nil
	}
	return &Envelope{
		Version: envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
