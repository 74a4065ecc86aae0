package edgeapi

import (
	"context"
	"net/http"

	"github.com/timel-e/core/middlewares"
	"github.com/timel-e/core/utils"
)

// log_action.go: per-action success/failure logging for Config, grounded on
// the teacher's HandlerConfig/Config.LogHandlerError/LogHandlerSuccess pair.

// logSuccess records a successful user-facing action via utils.LogUserAction.
func (cfg *Config) logSuccess(ctx context.Context, r *http.Request, action, details string) {
	ip, ua := requestMetadata(r)
	utils.LogUserAction(utils.ActionLogParams{
		Logger:    cfg.Logger,
		Ctx:       ctx,
		Action:    action,
		Status:    "success",
		Details:   details,
		UserAgent: ua,
		IP:        ip,
	})
}

// logFailure records a failed user-facing action, logging err at Error level
// in addition to the structured user-action entry.
func (cfg *Config) logFailure(ctx context.Context, r *http.Request, action, details string, err error) {
	ip, ua := requestMetadata(r)
	if err != nil {
		cfg.Logger.WithError(err).Error(action + " failed")
	}
	utils.LogUserAction(utils.ActionLogParams{
		Logger:    cfg.Logger,
		Ctx:       ctx,
		Action:    action,
		Status:    "fail",
		Details:   details,
		ErrorMsg:  errMsgOrNil(err),
		UserAgent: ua,
		IP:        ip,
	})
}

func errMsgOrNil(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}

func requestMetadata(r *http.Request) (ip, userAgent string) {
	return middlewares.GetIPAddress(r), r.UserAgent()
}
