package handler

import "net/http"

// HTMX header constants
const (
	// Request headers
	HXRequest        = "HX-Request"
	HXBoosted        = "HX-Boosted"
	HXHistoryRestore = "HX-History-Restore-Request"
	HXTarget         = "HX-Target"
	HXTrigger        = "HX-Trigger"
	HXCurrentURL     = "HX-Current-URL"

	// Response headers
	HXRedirect        = "HX-Redirect"
	HXRefresh         = "HX-Refresh"
	HXLocation        = "HX-Location"
	HXPushURL         = "HX-Push-Url"
	HXReswap          = "HX-Reswap"
	HXRetarget        = "HX-Retarget"
	HXTriggerResponse = "HX-Trigger"
)

// IsHTMX checks if the request is an HTMX request
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HXRequest) == "true"
}

// IsHTMXBoosted checks if the request is an HTMX boosted request
func IsHTMXBoosted(r *http.Request) bool {
	return r.Header.Get(HXBoosted) == "true"
}

// IsPartial reports whether the request wants a fragment rather than a full
// document: an HTMX request that is neither boosted nor a history restore.
func IsPartial(r *http.Request) bool {
	return IsHTMX(r) && !IsHTMXBoosted(r) && r.Header.Get(HXHistoryRestore) != "true"
}

// GetHTMXTarget returns the id of the target element if it exists
func GetHTMXTarget(r *http.Request) string {
	return r.Header.Get(HXTarget)
}

// GetHTMXTrigger returns the id of the triggered element if it exists
func GetHTMXTrigger(r *http.Request) string {
	return r.Header.Get(HXTrigger)
}

type redirectResponse struct {
	url    string
	status int
}

// Render sets HX-Redirect for HTMX requests (HTMX ignores 3xx bodies) and
// issues a regular redirect otherwise.
func (rr redirectResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if IsHTMX(r) {
		w.Header().Set(HXRedirect, rr.url)
		w.WriteHeader(http.StatusOK)
		return nil
	}
	http.Redirect(w, r, rr.url, rr.status)
	return nil
}

// Redirect responds with 303 See Other, or HX-Redirect for HTMX requests.
func Redirect(url string) Response {
	return redirectResponse{url: url, status: http.StatusSeeOther}
}

// RedirectWithStatus is Redirect with a custom 3xx status.
func RedirectWithStatus(url string, status int) Response {
	return redirectResponse{url: url, status: status}
}

type triggerResponse struct {
	event string
	next  Response
}

func (t triggerResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set(HXTriggerResponse, t.event)
	return t.next.Render(w, r)
}

// WithTrigger sets the HX-Trigger response header before rendering next.
func WithTrigger(event string, next Response) Response {
	return triggerResponse{event: event, next: next}
}
