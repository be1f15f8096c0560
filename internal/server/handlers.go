package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ai-fitness-planner/internal/auth"
	"ai-fitness-planner/internal/metrics"
	"ai-fitness-planner/internal/planner"
	"ai-fitness-planner/internal/profile"
	"ai-fitness-planner/internal/report"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string            `json:"status"`
	System metrics.SysHealth `json:"system"`
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status: "ok",
		System: metrics.GetSysHealth(s.dataDir),
	})
}

func (s *Server) loginHandler(c echo.Context) error {
	return s.authenticate(c, false)
}

func (s *Server) signupHandler(c echo.Context) error {
	return s.authenticate(c, true)
}

func (s *Server) authenticate(c echo.Context, signUp bool) error {
	var creds auth.Credentials
	if err := c.Bind(&creds); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	creds.SignUp = signUp

	session, err := s.gate.Authenticate(c.Request().Context(), creds)
	if err != nil {
		if errors.Is(err, auth.ErrMissingFields) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		requestLogger(c).Error().Err(err).Msg("failed to authenticate")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not sign in"})
	}
	return c.JSON(http.StatusOK, session)
}

// requireSession rejects requests without a valid bearer token.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		}

		claims, err := s.gate.Verify(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Invalid or expired token"})
		}
		c.Set("session", claims)
		return next(c)
	}
}

// formValue accepts both JSON strings and JSON numbers, the way form inputs
// arrive from different clients.
type formValue string

func (v *formValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = formValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = formValue(n.String())
	return nil
}

type planRequest struct {
	Age                 formValue `json:"age"`
	Gender              formValue `json:"gender"`
	Weight              formValue `json:"weight"`
	Height              formValue `json:"height"`
	Goal                formValue `json:"goal"`
	DietaryRestrictions formValue `json:"dietaryRestrictions"`
}

func (r planRequest) profile() (profile.Profile, error) {
	return profile.Parse(string(r.Age), string(r.Gender), string(r.Weight), string(r.Height),
		string(r.Goal), string(r.DietaryRestrictions))
}

func (s *Server) createPlanHandler(c echo.Context) error {
	var req planRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	prof, err := req.profile()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	p, err := s.planner.GeneratePlan(c.Request().Context(), prof)
	if err != nil {
		var genErr *planner.GenerationError
		if errors.As(err, &genErr) {
			return c.JSON(http.StatusBadGateway, errorResponse{Error: genErr.Message})
		}
		return c.JSON(http.StatusBadGateway, errorResponse{Error: planner.FailureMessage})
	}

	if c.QueryParam("format") == "html" {
		var buf bytes.Buffer
		if err := report.HTML(&buf, prof, p); err != nil {
			requestLogger(c).Error().Err(err).Msg("failed to render report")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not render report"})
		}
		return c.HTMLBlob(http.StatusOK, buf.Bytes())
	}
	return c.JSON(http.StatusOK, p)
}
