// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It covers body decoding, content negotiation between browser and fetch-style
callers, and the externally visible base URL used to build OAuth redirects.
*/
package requestutil

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/taibuivan/saddlebag/internal/platform/constants"
	"github.com/taibuivan/saddlebag/internal/platform/ctxutil"
	"github.com/taibuivan/saddlebag/internal/platform/validate"
	"github.com/taibuivan/saddlebag/internal/session"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Session returns the snapshot loaded by the session middleware.
func Session(request *http.Request) session.Session {
	return ctxutil.GetSession(request.Context())
}

// # Content Negotiation

/*
SendsJSON reports whether the request body is declared as JSON.

Description: Used by endpoints that answer fetch() callers with JSON and
plain form posts with a redirect.
*/
func SendsJSON(request *http.Request) bool {
	return isJSONMediaType(request.Header.Get(constants.HeaderContentType))
}

// AcceptsJSON reports whether the caller asked for a JSON response, either
// by Accept header or by sending JSON.
func AcceptsJSON(request *http.Request) bool {
	for _, part := range strings.Split(request.Header.Get(constants.HeaderAccept), ",") {
		if isJSONMediaType(part) {
			return true
		}
	}
	return SendsJSON(request)
}

func isJSONMediaType(value string) bool {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return mediaType == constants.MIMEApplicationJSON
}

// # Origin Derivation

/*
BaseURL reconstructs the public scheme://host the browser used.

Description: Honours X-Forwarded-Proto and X-Forwarded-Host set by the edge
proxy, falling back to the connection's TLS state and Host header.
*/
func BaseURL(request *http.Request) string {
	scheme := "http"
	if request.TLS != nil {
		scheme = "https"
	}
	if forwarded := firstValue(request.Header.Get(constants.HeaderXForwardedProto)); forwarded != "" {
		scheme = strings.ToLower(forwarded)
	}

	host := request.Host
	if forwarded := firstValue(request.Header.Get(constants.HeaderXForwardedHost)); forwarded != "" {
		host = forwarded
	}

	return scheme + "://" + host
}

// firstValue returns the first entry of a comma-separated proxy header.
func firstValue(header string) string {
	first, _, _ := strings.Cut(header, ",")
	return strings.TrimSpace(first)
}
