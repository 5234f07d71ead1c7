// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"net/http"
)

// SwarmMethod names one storage node operation.
type SwarmMethod string

const (
	MethodStore    SwarmMethod = "store"
	MethodDelete   SwarmMethod = "delete"
	MethodRetrieve SwarmMethod = "retrieve"
)

// SwarmRequest is one sub-request of a batch sent to a swarm. Exactly one of
// the params fields is set, matching Method.
type SwarmRequest struct {
	Method SwarmMethod `json:"method"`

	PubKey      SwarmPublicKey `json:"pubkey"`
	TimestampMs int64          `json:"timestamp"`
	Signature   string         `json:"signature"`

	Store    *StoreParams    `json:"store,omitempty"`
	Delete   *DeleteParams   `json:"delete,omitempty"`
	Retrieve *RetrieveParams `json:"retrieve,omitempty"`
}

// StoreParams stores one record in a namespace.
type StoreParams struct {
	Namespace int    `json:"namespace"`
	Data      []byte `json:"data"`
	TTLMs     int64  `json:"ttl"`
}

// DeleteParams deletes records by hash. When RequireSuccessfulDeletion is
// false, missing hashes are not an error.
type DeleteParams struct {
	Hashes                    []string `json:"messages"`
	RequireSuccessfulDeletion bool     `json:"required"`
}

// RetrieveParams fetches records newer than LastHash from a namespace.
type RetrieveParams struct {
	Namespace int    `json:"namespace"`
	LastHash  string `json:"last_hash,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// MaxBatchRequests caps the sub-requests of one batch call.
const MaxBatchRequests = 20

// SwarmBatch is the body of a batch call. Responses are returned in the
// same order as Requests.
type SwarmBatch struct {
	Requests []SwarmRequest `json:"requests"`
}

// SwarmBatchResponse is the positional response to a SwarmBatch.
type SwarmBatchResponse struct {
	Results []SwarmResponse `json:"results"`
}

// SwarmResponse is one sub-response of a batch.
type SwarmResponse struct {
	Code int             `json:"code"`
	Body json.RawMessage `json:"body,omitempty"`
}

// Succeeded reports whether the sub-request returned a 2xx status.
func (r SwarmResponse) Succeeded() bool {
	return r.Code >= http.StatusOK && r.Code < http.StatusMultipleChoices
}

// StoreResult is the body of a successful store sub-response.
type StoreResult struct {
	Hash string `json:"hash"`
}

// DeleteResult is the body of a successful delete sub-response.
type DeleteResult struct {
	Deleted []string `json:"deleted"`
}

// RetrieveResult is the body of a successful retrieve sub-response.
type RetrieveResult struct {
	Messages []StoredMessage `json:"messages"`
	More     bool            `json:"more"`
}

// StoredMessage is one record as held by a storage node.
type StoredMessage struct {
	Hash        string `json:"hash"`
	Namespace   int    `json:"namespace"`
	Data        []byte `json:"data"`
	TimestampMs int64  `json:"timestamp"`
	ExpiryMs    int64  `json:"expiry"`
}
