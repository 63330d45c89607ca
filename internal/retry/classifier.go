package retry

import (
	"errors"
	"strings"

	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// Default keyword tables for text-based fallback classification.
// The exact wording depends entirely on the error surface of the remote
// system being called, so callers can replace these via classifier options.
var (
	// DefaultTimeoutKeywords indicate the operation did not complete in time.
	DefaultTimeoutKeywords = []string{
		"timeout",
		"timed out",
		"deadline exceeded",
	}

	// DefaultThrottlingKeywords indicate the caller is being rate-limited.
	DefaultThrottlingKeywords = []string{
		"throttl",
		"rate limit",
		"rate-limit",
		"too many requests",
		"slow down",
	}

	// DefaultNetworkKeywords indicate connectivity-level failures.
	DefaultNetworkKeywords = []string{
		"connection refused",
		"connection reset",
		"connection failure",
		"no such host",
		"network is unreachable",
		"host is unreachable",
		"broken pipe",
		"unexpected eof",
	}

	// DefaultUnavailableKeywords indicate momentary service unavailability.
	DefaultUnavailableKeywords = []string{
		"service unavailable",
		"unavailable",
		"temporarily",
		"try again",
		"server is busy",
	}

	// DefaultTransientProviderCodes are nested provider error codes treated
	// as transient when no structured status or keyword matched.
	DefaultTransientProviderCodes = []string{
		"InternalServerError",
		"InternalError",
		"ServiceUnavailable",
		"TooManyRequests",
		"RequestTimeout",
		"TemporaryRedirect",
	}
)

// CategoryClassifier implements cloudmig.ErrorClassifier for failures from
// cloud management APIs and server endpoints.
//
// Classification order (first match wins):
//  1. Transport status code: 429 throttling; 500/502/503/504 service
//     unavailable; 408 timeout; any other code in the policy's
//     RetryableStatusCodes is transient.
//  2. Failure-kind tag present in the policy's RetryableErrorKinds.
//  3. Case-insensitive keyword search over the error text
//     (timeout, then throttling, then network, then unavailable).
//  4. Nested provider error code in the transient-code set.
//  5. Otherwise the error is not retryable.
//
// Structured checks run before text matching: they are cheaper and more
// reliable than substring search over heterogeneous error surfaces.
type CategoryClassifier struct {
	retryableStatusCodes map[int]struct{}
	retryableKinds       map[string]struct{}
	timeoutKeywords      []string
	throttlingKeywords   []string
	networkKeywords      []string
	unavailableKeywords  []string
	transientCodes       map[string]struct{}
}

// ClassifierOption is a functional option for configuring CategoryClassifier.
type ClassifierOption func(*CategoryClassifier)

// WithTimeoutKeywords replaces the timeout keyword table.
func WithTimeoutKeywords(keywords []string) ClassifierOption {
	return func(c *CategoryClassifier) {
		c.timeoutKeywords = lowerAll(keywords)
	}
}

// WithThrottlingKeywords replaces the throttling keyword table.
func WithThrottlingKeywords(keywords []string) ClassifierOption {
	return func(c *CategoryClassifier) {
		c.throttlingKeywords = lowerAll(keywords)
	}
}

// WithNetworkKeywords replaces the network keyword table.
func WithNetworkKeywords(keywords []string) ClassifierOption {
	return func(c *CategoryClassifier) {
		c.networkKeywords = lowerAll(keywords)
	}
}

// WithUnavailableKeywords replaces the service-unavailable keyword table.
func WithUnavailableKeywords(keywords []string) ClassifierOption {
	return func(c *CategoryClassifier) {
		c.unavailableKeywords = lowerAll(keywords)
	}
}

// WithTransientProviderCodes replaces the transient provider-code set.
func WithTransientProviderCodes(codes []string) ClassifierOption {
	return func(c *CategoryClassifier) {
		c.transientCodes = lowerSet(codes)
	}
}

// NewCategoryClassifier creates a classifier for the given policy.
// The policy contributes the retryable status-code and error-kind sets;
// keyword tables default to the package tables unless overridden.
func NewCategoryClassifier(policy Policy, opts ...ClassifierOption) *CategoryClassifier {
	c := &CategoryClassifier{
		retryableStatusCodes: make(map[int]struct{}, len(policy.RetryableStatusCodes)),
		retryableKinds:       lowerSet(policy.RetryableErrorKinds),
		timeoutKeywords:      lowerAll(DefaultTimeoutKeywords),
		throttlingKeywords:   lowerAll(DefaultThrottlingKeywords),
		networkKeywords:      lowerAll(DefaultNetworkKeywords),
		unavailableKeywords:  lowerAll(DefaultUnavailableKeywords),
		transientCodes:       lowerSet(DefaultTransientProviderCodes),
	}
	for _, code := range policy.RetryableStatusCodes {
		c.retryableStatusCodes[code] = struct{}{}
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Classify returns the retry category for err and true when err is transient.
// A false result means the executor must propagate err without retrying.
func (c *CategoryClassifier) Classify(err error) (cloudmig.RetryCategory, bool) {
	if err == nil {
		return 0, false
	}

	// 1. Transport status code, discovered through the wrapped chain.
	if status, ok := statusCode(err); ok {
		switch status {
		case 429:
			return cloudmig.CategoryThrottling, true
		case 500, 502, 503, 504:
			return cloudmig.CategoryServiceUnavailable, true
		case 408:
			return cloudmig.CategoryTimeout, true
		}
		if _, ok := c.retryableStatusCodes[status]; ok {
			return cloudmig.CategoryTransientOther, true
		}
	}

	// 2. Configured failure-kind tags.
	if kind, ok := errorKind(err); ok {
		if _, ok := c.retryableKinds[strings.ToLower(kind)]; ok {
			return cloudmig.CategoryTransientOther, true
		}
	}

	// 3. Keyword fallback over the error text.
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, c.timeoutKeywords):
		return cloudmig.CategoryTimeout, true
	case containsAny(msg, c.throttlingKeywords):
		return cloudmig.CategoryThrottling, true
	case containsAny(msg, c.networkKeywords):
		return cloudmig.CategoryNetworkError, true
	case containsAny(msg, c.unavailableKeywords):
		return cloudmig.CategoryServiceUnavailable, true
	}

	// 4. Nested provider error code.
	if code, ok := errorCode(err); ok {
		if _, ok := c.transientCodes[strings.ToLower(code)]; ok {
			return cloudmig.CategoryTransientOther, true
		}
	}

	return 0, false
}

// statusCode extracts a transport status code from the error chain.
// A zero status is treated as absent.
func statusCode(err error) (int, bool) {
	var sc cloudmig.StatusCoder
	if errors.As(err, &sc) && sc.StatusCode() != 0 {
		return sc.StatusCode(), true
	}
	return 0, false
}

// errorCode extracts a nested provider error code from the error chain.
func errorCode(err error) (string, bool) {
	var ec cloudmig.ErrorCoder
	if errors.As(err, &ec) && ec.ErrorCode() != "" {
		return ec.ErrorCode(), true
	}
	return "", false
}

// errorKind extracts a failure-kind tag from the error chain.
func errorKind(err error) (string, bool) {
	var ek cloudmig.ErrorKinder
	if errors.As(err, &ek) && ek.ErrorKind() != "" {
		return ek.ErrorKind(), true
	}
	return "", false
}

func containsAny(msg string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}
