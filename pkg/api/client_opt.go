package api

import (
	"net/http"
	"net/url"
)

type oauth2Opt struct {
	token string
}

func OAuth2(prefix, token string) *oauth2Opt {
	return &oauth2Opt{token: prefix + " " + token}
}

func (opt *oauth2Opt) Do(client defaultClient, req *http.Request) {
	req.Header.Add("Authorization", opt.token)
}

type auditLogReasonOpt struct {
	reason string
}

// AuditLogReason attaches a reason shown in the Discord audit log.
func AuditLogReason(reason string) *auditLogReasonOpt {
	return &auditLogReasonOpt{reason: reason}
}

func (opt *auditLogReasonOpt) Do(client defaultClient, req *http.Request) {
	if opt.reason != "" {
		req.Header.Set("X-Audit-Log-Reason", url.PathEscape(opt.reason))
	}
}
