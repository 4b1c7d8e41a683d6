package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/platform"
)

var errDeleteBody = errors.New("DELETE requests do not take a body")

func errBadMethod(method string) error {
	return fmt.Errorf("unknown method %q (want get, post, put, or delete)", method)
}

// APICall is the raw escape hatch: any verb against any path of either API,
// with the response printed unmodified. The path is relative to the profile's
// API base; a query string passes through untouched.
func APICall(ctx context.Context, app *App, platformName, method, path, data string) error {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return errdefs.Usage(errBadMethod(method))
	}
	if method == http.MethodGet && data != "" {
		return errdefs.Usage(errors.New("GET requests do not take a body"))
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	app.logCommand("api", "platform", platformName, "method", method, "path", path)

	var client platform.RawAPI
	var err error
	switch platformName {
	case "cloud":
		client, err = app.Conn.Cloud(ctx, app.Globals.Profile)
	case "enterprise":
		client, err = app.Conn.Enterprise(ctx, app.Globals.Profile)
	default:
		return errdefs.Usage(fmt.Errorf("unknown platform %q (want cloud or enterprise)", platformName))
	}
	if err != nil {
		return err
	}

	var raw json.RawMessage
	if method == http.MethodGet {
		raw, err = client.Get(ctx, path)
	} else {
		raw, err = write(ctx, client, method, path, data)
	}
	return printRaw(app, raw, err)
}
