package network

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/als-computing/scicat-beamline/models"
)

type ScicatResponse struct {
	Request  *http.Request
	Response *http.Response
	Error    error

	objectType  ScicatObjectType
	hasBeenRead bool
	data        []byte
}

type ScicatObjectType string

const (
	ScicatTypeToken      ScicatObjectType = "Token"
	ScicatTypeDataset                     = "Dataset"
	ScicatTypeDatablock                   = "OrigDatablock"
	ScicatTypeAttachment                  = "Attachment"
)

// NewScicatResponse returns a pointer to a new response object.
func NewScicatResponse(objType ScicatObjectType) *ScicatResponse {
	return &ScicatResponse{
		objectType:  objType,
		hasBeenRead: false,
	}
}

// RawResponseData returns the raw body of the HTTP response as a
// byte slice. The return value may be nil.
func (resp *ScicatResponse) RawResponseData() ([]byte, error) {
	if !resp.hasBeenRead {
		resp.readResponse()
	}
	return resp.data, resp.Error
}

// Reads the body of an HTTP response object, closes the stream, and
// keeps the byte array. The body MUST be closed, or you'll wind up
// with a lot of open network connections.
func (resp *ScicatResponse) readResponse() {
	if !resp.hasBeenRead && resp.Response != nil && resp.Response.Body != nil {
		resp.data, resp.Error = io.ReadAll(resp.Response.Body)
		resp.Response.Body.Close()
		resp.hasBeenRead = true
	}
}

// ObjectType returns the type of object contained in this response.
func (resp *ScicatResponse) ObjectType() ScicatObjectType {
	return resp.objectType
}

// StatusOK returns true if the API answered with a 2xx status.
func (resp *ScicatResponse) StatusOK() bool {
	return resp.Response != nil &&
		resp.Response.StatusCode >= 200 && resp.Response.StatusCode < 300
}

// ErrorOrStatus returns resp.Error if one is set, or an error
// describing a non-2xx HTTP status, or nil if the call succeeded.
func (resp *ScicatResponse) ErrorOrStatus() error {
	if resp.Error != nil {
		return resp.Error
	}
	if !resp.StatusOK() {
		body, _ := resp.RawResponseData()
		if len(body) > MAX_ERR_MSG_SIZE {
			body = body[:MAX_ERR_MSG_SIZE]
		}
		url := "unknown URL"
		method := "?"
		if resp.Request != nil {
			url = resp.Request.URL.String()
			method = resp.Request.Method
		}
		return fmt.Errorf("%s %s returned status code %d. Response body: %s",
			method, url, resp.Response.StatusCode, string(body))
	}
	return nil
}

// Token returns the bearer token parsed from a login response, or
// an empty string. SciCat has answered logins with both an "id" and
// an "access_token" field across API versions, so accept either.
func (resp *ScicatResponse) Token() string {
	data, err := resp.RawResponseData()
	if err != nil {
		return ""
	}
	temp := struct {
		Id          string `json:"id"`
		AccessToken string `json:"access_token"`
	}{}
	if resp.Error = json.Unmarshal(data, &temp); resp.Error != nil {
		return ""
	}
	if temp.Id != "" {
		return temp.Id
	}
	return temp.AccessToken
}

// DatasetId returns the pid of the dataset parsed from a create
// response, or an empty string.
func (resp *ScicatResponse) DatasetId() string {
	data, err := resp.RawResponseData()
	if err != nil {
		return ""
	}
	temp := struct {
		Pid string `json:"pid"`
	}{}
	if resp.Error = json.Unmarshal(data, &temp); resp.Error != nil {
		return ""
	}
	return temp.Pid
}

// Datasets returns the list of dataset summaries parsed from the
// HTTP response body.
func (resp *ScicatResponse) Datasets() []*models.DatasetSummary {
	data, err := resp.RawResponseData()
	if err != nil {
		return make([]*models.DatasetSummary, 0)
	}
	datasets := make([]*models.DatasetSummary, 0)
	if resp.Error = json.Unmarshal(data, &datasets); resp.Error != nil {
		return make([]*models.DatasetSummary, 0)
	}
	return datasets
}
