package swagger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a mux with the docs routes", t, func() {
		mux := http.NewServeMux()
		Register(mux)

		convey.Convey("Then /openapi.yaml serves a parsable document", func() {
			req := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")

			var doc struct {
				OpenAPI string         `yaml:"openapi"`
				Paths   map[string]any `yaml:"paths"`
			}
			convey.So(yaml.Unmarshal(w.Body.Bytes(), &doc), convey.ShouldBeNil)
			convey.So(doc.OpenAPI, convey.ShouldStartWith, "3.")
			for _, path := range []string{
				"/teams", "/teams/{run_id}", "/drafts", "/drafts/{id}", "/drafts/{id}/picks", "/drafts/{id}/skips",
				"/drafts/{id}/open", "/drafts/{id}/pause", "/drafts/{id}/resume", "/drafts/{id}/end",
				"/xp", "/leaderboard", "/rank/{participant_id}", "/healthz", "/stats",
			} {
				convey.So(doc.Paths, convey.ShouldContainKey, path)
			}
		})

		convey.Convey("And /api-docs serves the ReDoc page", func() {
			req := httptest.NewRequest("GET", "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "/openapi.yaml")
		})

		convey.Convey("And a nil mux is refused", func() {
			convey.So(func() { Register(nil) }, convey.ShouldPanic)
		})
	})
}
