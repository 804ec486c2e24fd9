package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"golang.org/x/oauth2"

	"github.com/dawrench-labs/dawrench-go/internal/domain"
	"github.com/dawrench-labs/dawrench-go/internal/params"
)

type Argument struct {
	Verb      Verb              `json:"verb"`
	URL       string            `json:"url"`
	PathInZip string            `json:"pathInZip,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
}

type WorkItem struct {
	ActivityID string              `json:"activityId"`
	Arguments  map[string]Argument `json:"arguments"`
}

type WorkItemInput struct {
	Owner        string
	BucketKey    string
	InputObject  string
	ParamsFile   string
	OutputObject string
}

func (in WorkItemInput) validate() error {
	if strings.TrimSpace(in.Owner) == "" {
		return errors.New("owner is required")
	}
	if strings.TrimSpace(in.BucketKey) == "" {
		return errors.New("bucket key is required")
	}
	if strings.TrimSpace(in.InputObject) == "" {
		return errors.New("input object is required")
	}
	if strings.TrimSpace(in.OutputObject) == "" {
		return errors.New("output object is required")
	}
	if strings.TrimSpace(in.ParamsFile) == "" {
		return fmt.Errorf("%w: params file is required", domain.ErrParameterFile)
	}
	return nil
}

// URLSigner hands out pre-authorized object URLs.
type URLSigner interface {
	SignGet(ctx context.Context, bucket, key string) (string, error)
	SignPut(ctx context.Context, bucket, key string) (string, error)
}

// Publisher builds work items. Object URLs are either presigned by a
// URLSigner or point at OSS with a bearer token header.
type Publisher struct {
	cfg    Config
	tokens oauth2.TokenSource
	signer URLSigner
}

func NewPublisher(cfg Config, tokens oauth2.TokenSource, signer URLSigner) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tokens == nil && signer == nil {
		return nil, errors.New("token source or url signer is required")
	}
	return &Publisher{cfg: cfg, tokens: tokens, signer: signer}, nil
}

func (p *Publisher) WorkItem(ctx context.Context, in WorkItemInput) (WorkItem, error) {
	if err := in.validate(); err != nil {
		return WorkItem{}, err
	}
	inline, err := inlineParams(in.ParamsFile)
	if err != nil {
		return WorkItem{}, err
	}

	docArg := Argument{Verb: VerbGet, PathInZip: p.cfg.PathInZip}
	outArg := Argument{Verb: VerbPut}
	if p.signer != nil {
		if docArg.URL, err = p.signer.SignGet(ctx, in.BucketKey, in.InputObject); err != nil {
			return WorkItem{}, fmt.Errorf("sign input url: %w", err)
		}
		if outArg.URL, err = p.signer.SignPut(ctx, in.BucketKey, in.OutputObject); err != nil {
			return WorkItem{}, fmt.Errorf("sign output url: %w", err)
		}
	} else {
		tok, err := p.tokens.Token()
		if err != nil {
			return WorkItem{}, fmt.Errorf("fetch access token: %w", err)
		}
		auth := map[string]string{"Authorization": "Bearer " + tok.AccessToken}
		docArg.URL = p.objectURL(in.BucketKey, in.InputObject)
		docArg.Headers = auth
		outArg.URL = p.objectURL(in.BucketKey, in.OutputObject)
		outArg.Headers = auth
	}

	return WorkItem{
		ActivityID: p.cfg.QualifiedActivityID(in.Owner),
		Arguments: map[string]Argument{
			ParamInventorDoc:    docArg,
			ParamDocumentParams: {Verb: VerbGet, URL: "data:application/json, " + inline},
			ParamOutputZip:      outArg,
		},
	}, nil
}

func (p *Publisher) objectURL(bucket, object string) string {
	base := strings.TrimRight(p.cfg.OSSBaseURL, "/")
	return fmt.Sprintf("%s/buckets/%s/objects/%s", base, url.PathEscape(bucket), url.PathEscape(object))
}

// inlineParams validates the parameter file the way the job will read it
// and returns its compact JSON form with key order preserved.
func inlineParams(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrParameterFile, err)
	}
	if _, err := params.Parse(data); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrParameterParse, err)
	}
	return buf.String(), nil
}
