package attachly

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
)

const (
	SignatureAlgorithm = "AWS4-HMAC-SHA256"
	DateTimeFormat     = "20060102T150405Z"
	DateFormat         = "20060102"
	UnsignedPayload    = "UNSIGNED-PAYLOAD"
	SignedHeaders      = "host;x-amz-date"
	ServiceName        = "s3"
	ScopeTerminator    = "aws4_request"

	// DefaultMaxClockSkew bounds how far X-Amz-Date may drift from the verifier's clock.
	DefaultMaxClockSkew = 15 * time.Minute
)

var schemePrefixRegex = regexp.MustCompile(`^https?://`)

// Sign computes the SigV4 Authorization header for an object request.
//
// The canonical request signs exactly two headers (host and x-amz-date) and
// uses UNSIGNED-PAYLOAD as the body hash, so the request body is never read
// by the signer and is not covered by the signature.
//
// The canonical URI is "/{bucket}/{key}" percent-encoded with EscapePath,
// and the returned URL carries the same bytes, so what is signed is what goes
// on the wire. Keys made only of unreserved characters are unchanged.
//
// Sign is a pure function: identical inputs, including now, always produce
// an identical signature. The Content-Type header is only emitted for PUT.
func Sign(method, key string, cfg StorageConfig, contentType string, now time.Time) (SignedRequest, SigningContext) {
	endpoint := NormalizeEndpoint(cfg.Endpoint)
	host := endpointHost(endpoint)
	canonicalURI := EscapePath("/" + cfg.BucketName + "/" + key)

	timestamp := now.UTC().Format(DateTimeFormat)
	dateStamp := timestamp[:8]

	canonicalHeaders := "host:" + host + "\n" + "x-amz-date:" + timestamp + "\n"
	canonicalRequest := buildCanonicalRequest(method, canonicalURI, "", canonicalHeaders, SignedHeaders, UnsignedPayload)

	scope := credentialScope(dateStamp, cfg.Region, ServiceName)
	stringToSign := buildStringToSign(timestamp, scope, canonicalRequest)

	signingKey := DeriveKey(cfg.SecretAccessKey, dateStamp, cfg.Region, ServiceName, ScopeTerminator)
	signature := hex.EncodeToString(hmacSHA256(signingKey, []byte(stringToSign)))

	headers := map[string]string{
		"Authorization": fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
			SignatureAlgorithm, cfg.AccessKeyID, scope, SignedHeaders, signature),
		"x-amz-date": timestamp,
	}
	if method == http.MethodPut && contentType != "" {
		headers["Content-Type"] = contentType
	}

	req := SignedRequest{
		URL:     endpoint + canonicalURI,
		Headers: headers,
	}
	sc := SigningContext{
		Timestamp:        timestamp,
		DateStamp:        dateStamp,
		CanonicalRequest: canonicalRequest,
		StringToSign:     stringToSign,
		SigningKey:       signingKey,
		Signature:        signature,
	}
	return req, sc
}

// Signer signs requests against its clock.
type Signer struct {
	Now func() time.Time
}

// NewSigner returns a Signer using the wall clock.
func NewSigner() *Signer {
	return &Signer{Now: time.Now}
}

// Sign signs method and key for cfg at the signer's current time.
func (s *Signer) Sign(method, key string, cfg StorageConfig, contentType string) (SignedRequest, SigningContext) {
	now := time.Now
	if s != nil && s.Now != nil {
		now = s.Now
	}
	return Sign(method, key, cfg, contentType, now())
}

// DeriveKey folds HMAC-SHA256 over scope, seeded with "AWS4"+secret.
// For SigV4 the scope is dateStamp, region, service, "aws4_request".
func DeriveKey(secret string, scope ...string) []byte {
	key := []byte("AWS4" + secret)
	for _, part := range scope {
		key = hmacSHA256(key, []byte(part))
	}
	return key
}

// endpointHost strips the scheme (and any path) from endpoint.
func endpointHost(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		return u.Host
	}
	host := schemePrefixRegex.ReplaceAllString(endpoint, "")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	return host
}

// EscapePath percent-encodes every byte of p outside the SigV4 unreserved
// set (A-Z a-z 0-9 - . _ ~), leaving "/" as the segment separator. It is the
// S3 form of URI encoding: each byte is encoded once, in upper-case hex.
func EscapePath(p string) string {
	const hexDigits = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); i++ {
		c := p[i]
		if isUnreserved(c) || c == '/' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

func credentialScope(dateStamp, region, service string) string {
	return dateStamp + "/" + region + "/" + service + "/" + ScopeTerminator
}

func buildCanonicalRequest(method, uri, query, canonicalHeaders, signedHeaders, payloadHash string) string {
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s\n%s",
		method,
		uri,
		query,
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	)
}

func buildStringToSign(timestamp, scope, canonicalRequest string) string {
	return fmt.Sprintf("%s\n%s\n%s\n%s",
		SignatureAlgorithm,
		timestamp,
		scope,
		sha256Hash(canonicalRequest),
	)
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

func sha256Hash(data string) string {
	h := sha256.New()
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// SecretStore looks up the secret key for an access key.
type SecretStore interface {
	Lookup(accessKey string) (secretKey string, err error)
}

// SignatureVerifier verifies header-based SigV4 requests, the inverse of Sign.
type SignatureVerifier struct {
	Region  string
	Service string
	Store   SecretStore
	MaxSkew time.Duration
	Now     func() time.Time
}

// NewSignatureVerifier creates a verifier for the s3 service in region.
func NewSignatureVerifier(region string, store SecretStore) *SignatureVerifier {
	return &SignatureVerifier{
		Region:  region,
		Service: ServiceName,
		Store:   store,
		MaxSkew: DefaultMaxClockSkew,
		Now:     time.Now,
	}
}

type authorizationParams struct {
	accessKey     string
	dateStamp     string
	region        string
	service       string
	signedHeaders string
	signature     string
}

// Verify checks the Authorization header of a request. path is the escaped
// request path as received (r.URL.EscapedPath()), not the decoded one.
// headers must include Host (Go keeps it outside r.Header). It returns the
// access key on success.
//
// Validations performed:
//  1. Authorization header present and uses AWS4-HMAC-SHA256
//  2. Credential scope is well formed and ends in aws4_request
//  3. X-Amz-Date parses and is within MaxSkew of now
//  4. Credential date, region and service match
//  5. Access key exists in the store
//  6. Signature matches the recomputed signature
func (v *SignatureVerifier) Verify(method, path string, headers http.Header) (string, error) {
	params, err := parseAuthorization(headers.Get("Authorization"))
	if err != nil {
		return "", err
	}

	amzDate := headers.Get("X-Amz-Date")
	requestTime, err := time.Parse(DateTimeFormat, amzDate)
	if err != nil {
		return "", fmt.Errorf("invalid X-Amz-Date format: %w", ErrUnauthorized)
	}

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	skew := now().Sub(requestTime)
	if skew < 0 {
		skew = -skew
	}
	if v.MaxSkew > 0 && skew > v.MaxSkew {
		return "", fmt.Errorf("request time too skewed: %w", ErrUnauthorized)
	}

	if params.dateStamp != requestTime.Format(DateFormat) {
		return "", fmt.Errorf("credential date mismatch: %w", ErrUnauthorized)
	}

	if params.region != v.Region {
		return "", fmt.Errorf("region mismatch: expected %s, got %s: %w", v.Region, params.region, ErrUnauthorized)
	}

	if params.service != v.Service {
		return "", fmt.Errorf("service mismatch: expected %s, got %s: %w", v.Service, params.service, ErrUnauthorized)
	}

	secretKey, err := v.Store.Lookup(params.accessKey)
	if err != nil {
		return "", fmt.Errorf("invalid access key: %w", ErrUnauthorized)
	}

	payloadHash := headers.Get("X-Amz-Content-Sha256")
	if payloadHash == "" {
		payloadHash = UnsignedPayload
	}

	canonicalRequest := buildCanonicalRequest(
		method,
		path,
		"",
		buildCanonicalHeaders(headers, params.signedHeaders),
		params.signedHeaders,
		payloadHash,
	)
	scope := credentialScope(params.dateStamp, params.region, params.service)
	stringToSign := buildStringToSign(amzDate, scope, canonicalRequest)
	signingKey := DeriveKey(secretKey, params.dateStamp, params.region, params.service, ScopeTerminator)
	expected := hex.EncodeToString(hmacSHA256(signingKey, []byte(stringToSign)))

	if !hmac.Equal([]byte(expected), []byte(params.signature)) {
		return "", fmt.Errorf("signature mismatch: %w", ErrUnauthorized)
	}

	return params.accessKey, nil
}

// parseAuthorization splits
// "AWS4-HMAC-SHA256 Credential=AK/date/region/service/aws4_request, SignedHeaders=a;b, Signature=hex".
func parseAuthorization(header string) (*authorizationParams, error) {
	if header == "" {
		return nil, fmt.Errorf("missing authorization header: %w", ErrUnauthorized)
	}

	algorithm, rest, ok := strings.Cut(header, " ")
	if !ok || algorithm != SignatureAlgorithm {
		return nil, fmt.Errorf("invalid algorithm: expected %s: %w", SignatureAlgorithm, ErrUnauthorized)
	}

	fields := make(map[string]string, 3)
	for _, f := range strings.Split(rest, ",") {
		k, val, found := strings.Cut(strings.TrimSpace(f), "=")
		if found {
			fields[k] = val
		}
	}

	credential := fields["Credential"]
	signedHeaders := fields["SignedHeaders"]
	signature := fields["Signature"]
	if credential == "" || signedHeaders == "" || signature == "" {
		return nil, fmt.Errorf("missing authorization components: %w", ErrUnauthorized)
	}

	credParts := strings.Split(credential, "/")
	if len(credParts) != 5 {
		return nil, fmt.Errorf("invalid credential format: %w", ErrUnauthorized)
	}

	if credParts[4] != ScopeTerminator {
		return nil, fmt.Errorf("invalid credential terminator: expected aws4_request: %w", ErrUnauthorized)
	}

	return &authorizationParams{
		accessKey:     credParts[0],
		dateStamp:     credParts[1],
		region:        credParts[2],
		service:       credParts[3],
		signedHeaders: signedHeaders,
		signature:     signature,
	}, nil
}

// buildCanonicalHeaders builds the canonical headers string from the signed headers list.
// Headers are sorted alphabetically and formatted as "name:value\n".
func buildCanonicalHeaders(headers http.Header, signedHeaders string) string {
	headerNames := strings.Split(signedHeaders, ";")
	sort.Strings(headerNames)

	var result strings.Builder
	for _, name := range headerNames {
		value := strings.TrimSpace(headers.Get(name))
		result.WriteString(name)
		result.WriteString(":")
		result.WriteString(value)
		result.WriteString("\n")
	}
	return result.String()
}
