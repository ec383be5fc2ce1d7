package network

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/als-computing/scicat-beamline/models"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

// Don't log error response bodies longer than this.
const MAX_ERR_MSG_SIZE = 2048

// ScicatClient talks to the SciCat REST API. Authentication is
// lazy: the first call that needs a token logs in with the
// username and password the client was built with. The token lives
// only as long as the client, which lives only as long as one
// dispatcher invocation.
type ScicatClient struct {
	HostUrl    string
	username   string
	password   string
	token      string
	httpClient *http.Client
	transport  *http.Transport
	logger     *logging.Logger
}

// NewScicatClient creates a new SciCat client. Param hostUrl should
// include the API prefix, e.g. https://mwet.lbl.gov/api/v3. Param
// timeout bounds each HTTP call so a hung connection fails a single
// request instead of stalling the whole run.
func NewScicatClient(hostUrl, username, password string, timeout time.Duration, logger *logging.Logger) (*ScicatClient, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("SciCat client requires a username and password")
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 8,
		DisableKeepAlives:   false,
		Dial: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).Dial,
		ResponseHeaderTimeout: 10 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
	}
	httpClient := &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
	// Trim trailing slashes from host url
	for strings.HasSuffix(hostUrl, "/") {
		hostUrl = hostUrl[:len(hostUrl)-1]
	}
	client := &ScicatClient{
		HostUrl:    hostUrl,
		username:   username,
		password:   password,
		httpClient: httpClient,
		transport:  transport,
		logger:     logger,
	}
	return client, nil
}

// HasToken returns true once the client has logged in.
func (client *ScicatClient) HasToken() bool {
	return client.token != ""
}

// Login authenticates with the SciCat API and stores the bearer
// token for subsequent calls. Calling Login when the client already
// has a token is a no-op.
func (client *ScicatClient) Login() error {
	if client.HasToken() {
		return nil
	}
	creds, err := json.Marshal(map[string]string{
		"username": client.username,
		"password": client.password,
	})
	if err != nil {
		return err
	}
	resp := NewScicatResponse(ScicatTypeToken)
	client.doJsonRequest(resp, "POST", client.BuildUrl("/Users/login", nil), bytes.NewBuffer(creds))
	if err := resp.ErrorOrStatus(); err != nil {
		// Never echo the request body here: it holds the password.
		return errors.Wrapf(err, "SciCat login failed for user at %s", client.HostUrl)
	}
	token := resp.Token()
	if token == "" {
		return fmt.Errorf("SciCat login response from %s contained no token", client.HostUrl)
	}
	client.token = token
	client.logger.Info("Logged in to SciCat at %s", client.HostUrl)
	return nil
}

// DatasetCreate registers a raw dataset with SciCat.
func (client *ScicatClient) DatasetCreate(dataset *models.RawDataset) *ScicatResponse {
	return client.postObject(ScicatTypeDataset, "/Datasets", dataset)
}

// DerivedDatasetCreate registers a derived dataset with SciCat.
func (client *ScicatClient) DerivedDatasetCreate(dataset *models.DerivedDataset) *ScicatResponse {
	return client.postObject(ScicatTypeDataset, "/Datasets", dataset)
}

// DatasetList fetches the datasets matching the given where-clause
// fields, e.g. {"datasetName": "B12_Kapton"}.
func (client *ScicatClient) DatasetList(where map[string]string) *ScicatResponse {
	resp := NewScicatResponse(ScicatTypeDataset)
	filter, err := json.Marshal(map[string]interface{}{"where": where})
	if err != nil {
		resp.Error = err
		return resp
	}
	params := url.Values{}
	params.Set("filter", string(filter))
	client.doJsonRequest(resp, "GET", client.BuildUrl("/Datasets", &params), nil)
	return resp
}

// OrigDatablockCreate attaches the file listing for a dataset that
// was just created. Param datasetId is the pid SciCat assigned.
func (client *ScicatClient) OrigDatablockCreate(datasetId string, block *models.OrigDatablock) *ScicatResponse {
	relativeUrl := fmt.Sprintf("/Datasets/%s/origdatablocks", url.PathEscape(datasetId))
	return client.postObject(ScicatTypeDatablock, relativeUrl, block)
}

// AttachmentCreate attaches a thumbnail to an existing dataset.
func (client *ScicatClient) AttachmentCreate(datasetId string, attachment *models.Attachment) *ScicatResponse {
	relativeUrl := fmt.Sprintf("/Datasets/%s/attachments", url.PathEscape(datasetId))
	return client.postObject(ScicatTypeAttachment, relativeUrl, attachment)
}

func (client *ScicatClient) postObject(objType ScicatObjectType, relativeUrl string, object interface{}) *ScicatResponse {
	resp := NewScicatResponse(objType)
	postData, err := json.Marshal(object)
	if err != nil {
		resp.Error = err
		return resp
	}
	client.doJsonRequest(resp, "POST", client.BuildUrl(relativeUrl, nil), bytes.NewBuffer(postData))
	return resp
}

// BuildUrl combines client.HostUrl with relativeUrl to create an
// absolute URL. For example, if client.HostUrl is
// "http://localhost:3000/api/v3", then client.BuildUrl("/Datasets")
// returns "http://localhost:3000/api/v3/Datasets".
func (client *ScicatClient) BuildUrl(relativeUrl string, queryParams *url.Values) string {
	fullUrl := client.HostUrl + relativeUrl
	if queryParams != nil {
		fullUrl = fmt.Sprintf("%s?%s", fullUrl, queryParams.Encode())
	}
	return fullUrl
}

// NewJsonRequest returns a new request with headers indicating JSON
// request and response formats, and the bearer token if the client
// has one.
func (client *ScicatClient) NewJsonRequest(method, targetUrl string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, targetUrl, body)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Connection", "Keep-Alive")
	if client.token != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", client.token))
	}
	return req, nil
}

// doJsonRequest issues an HTTP request, reads the response, and
// closes the connection to the remote server. If an error occurs,
// it is recorded in resp.Error.
func (client *ScicatClient) doJsonRequest(resp *ScicatResponse, method, absoluteUrl string, requestData io.Reader) {
	request, err := client.NewJsonRequest(method, absoluteUrl, requestData)
	resp.Request = request
	resp.Error = err
	if resp.Error != nil {
		return
	}

	resp.Response, resp.Error = client.httpClient.Do(request)
	if resp.Error != nil {
		return
	}

	// Read the response data and close the response body. That's
	// the only way to close the remote HTTP connection, which will
	// otherwise stay open indefinitely, causing the system to
	// eventually have too many open files.
	resp.readResponse()
}
