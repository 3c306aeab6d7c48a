// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web serves the report-card page over HTTP with echo. One server
// owns one lookup controller, so every browser tab sees the same page.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pdiddy/report-card/internal/history"
	"github.com/pdiddy/report-card/internal/lookup"
	"github.com/pdiddy/report-card/internal/report"
)

// Route paths.
const (
	PagePath    = "/"
	XLSXPath    = "/report.xlsx"
	StatePath   = "/api/state"
	HistoryPath = "/api/history"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var errNoReport = echo.NewHTTPError(http.StatusNotFound, "no report to download")

type (
	// Options configures a Server.
	Options struct {
		Address        string
		DisableReqLogs bool

		// Controller holds the page state. Required.
		Controller *lookup.Controller

		// History, when set, records every resolved lookup and enables
		// the history API.
		History *history.Store

		// Out receives request logs and lookup failure causes.
		Out io.Writer
	}

	// Server is the report-card web surface.
	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

// NewServer builds the echo application for opts.
func NewServer(opts *Options) Server {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true
	s.app.Logger.SetOutput(s.opts.Out)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{Output: s.opts.Out}))
	}
	s.app.Use(middleware.Recover())
	s.app.HTTPErrorHandler = s.httpErrorHandler

	s.app.GET(PagePath, s.page)
	s.app.POST(report.LookupPath, s.lookup)
	s.app.GET(XLSXPath, s.xlsx)
	s.app.GET(StatePath, s.state)
	if s.opts.History != nil {
		s.app.GET(HistoryPath, s.history)
	}
}

// Start listens on the configured address until Stop is called.
func (s *server) Start() error {
	fmt.Fprintf(s.opts.Out, "report-card listening on http://%s\n", s.opts.Address)
	if err := s.app.Start(s.opts.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

// httpErrorHandler logs unexpected errors before echo writes the response.
func (s *server) httpErrorHandler(err error, c echo.Context) {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		fmt.Fprintf(s.opts.Out, "%s %s: %v\n", c.Request().Method, c.Path(), err)
	}
	s.app.DefaultHTTPErrorHandler(err, c)
}

func (s *server) view() report.View {
	ctrl := s.opts.Controller
	return report.NewView(ctrl.Snapshot(), ctrl.Now())
}

func (s *server) page(c echo.Context) error {
	v := s.view()
	opts := report.HTMLOptions{}
	if v.ShowTable() {
		opts.XLSXPath = XLSXPath
	}

	var buf bytes.Buffer
	if err := report.WriteHTML(&buf, v, opts); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// lookup submits the form and redirects back to the page so a reload does
// not resubmit.
func (s *server) lookup(c echo.Context) error {
	ctx := c.Request().Context()
	query := c.FormValue(report.RegNoField)

	st, applied, err := s.opts.Controller.Submit(ctx, query)
	if err != nil {
		fmt.Fprintf(s.opts.Out, "lookup %q: %v\n", query, err)
	}

	// A superseded submission leaves recording to the newer one.
	if s.opts.History != nil && applied {
		if _, herr := s.opts.History.Record(ctx, history.FromState(st, s.opts.Controller.Now())); herr != nil {
			fmt.Fprintf(s.opts.Out, "recording history: %v\n", herr)
		}
	}
	return c.Redirect(http.StatusSeeOther, PagePath)
}

func (s *server) xlsx(c echo.Context) error {
	v := s.view()
	if !v.ShowTable() {
		return errNoReport
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, v); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "report-"+v.RegistrationNumber+".xlsx"))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

type stateResponse struct {
	lookup.State
	BannerVisible bool   `json:"banner_visible"`
	Banner        string `json:"banner,omitempty"`
	FormattedCGPA string `json:"formatted_cgpa"`
}

func (s *server) state(c echo.Context) error {
	ctrl := s.opts.Controller
	st, now := ctrl.Snapshot(), ctrl.Now()
	v := report.NewView(st, now)
	return c.JSON(http.StatusOK, stateResponse{
		State:         st,
		BannerVisible: st.BannerVisible(now),
		Banner:        v.Banner,
		FormattedCGPA: v.FormattedCGPA(),
	})
}

func (s *server) history(c echo.Context) error {
	opts := history.ListOptions{RegistrationNumber: c.QueryParam("reg_no")}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		opts.Limit = n
	}

	entries, err := s.opts.History.List(c.Request().Context(), opts)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}
