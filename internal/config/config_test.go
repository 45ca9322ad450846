package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad(t *testing.T) {
	Convey("Given no configuration file", t, func() {
		t.Setenv(ConfigFileEnv, "")

		Convey("When loading with defaults in development", func() {
			cfg, err := Load()

			Convey("Then the defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Server.Address, ShouldEqual, ":8080")
				So(cfg.Server.ReadTimeout, ShouldEqual, 15*time.Second)
				So(cfg.Upstream.BaseURL, ShouldEqual, "http://localhost:8000")
				So(cfg.Upstream.AnalyzeTimeout, ShouldEqual, 5*time.Minute)
				So(cfg.Display.DefaultVersion, ShouldEqual, "latest")
				So(cfg.Display.AutoLoad, ShouldBeTrue)
				So(cfg.IsDevelopment(), ShouldBeTrue)
				So(cfg.Security.SecureCookies, ShouldBeFalse)
			})

			Convey("And a throwaway CSRF secret is generated", func() {
				So(len(cfg.Security.CSRFSecret), ShouldBeGreaterThanOrEqualTo, 32)
			})
		})

		Convey("When environment variables are set", func() {
			t.Setenv("TOPLANE_SERVER_ADDRESS", ":9090")
			t.Setenv("TOPLANE_API_BASE_URL", "https://api.example.com/")
			t.Setenv("TOPLANE_ANALYZE_TIMEOUT", "90s")
			t.Setenv("TOPLANE_AUTO_LOAD", "false")
			t.Setenv("TOPLANE_DEFAULT_VERSION", "26.3")
			t.Setenv("TOPLANE_MAX_VISITORS", "50")
			t.Setenv("TOPLANE_CSRF_TRUSTED_ORIGINS", "guide.example.com localhost:8080")
			t.Setenv("TOPLANE_CSRF_SECRET", testSecret)
			t.Setenv("TOPLANE_UNKNOWN_SETTING", "ignored")

			cfg, err := Load()

			Convey("Then they override the defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Server.Address, ShouldEqual, ":9090")
				So(cfg.Upstream.BaseURL, ShouldEqual, "https://api.example.com")
				So(cfg.Upstream.AnalyzeTimeout, ShouldEqual, 90*time.Second)
				So(cfg.Display.AutoLoad, ShouldBeFalse)
				So(cfg.Display.DefaultVersion, ShouldEqual, "26.3")
				So(cfg.Display.MaxVisitors, ShouldEqual, 50)
				So(cfg.Security.CSRFSecret, ShouldEqual, testSecret)
				So(cfg.Security.TrustedOriginList(), ShouldResemble, []string{"guide.example.com", "localhost:8080"})
			})
		})

		Convey("When running in production", func() {
			t.Setenv("TOPLANE_APP_ENV", "production")

			Convey("Then a CSRF secret is required", func() {
				t.Setenv("TOPLANE_CSRF_SECRET", "")
				_, err := Load()
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "TOPLANE_CSRF_SECRET")
			})

			Convey("Then cookies are secure", func() {
				t.Setenv("TOPLANE_CSRF_SECRET", testSecret)
				cfg, err := Load()
				So(err, ShouldBeNil)
				So(cfg.IsProduction(), ShouldBeTrue)
				So(cfg.Security.SecureCookies, ShouldBeTrue)
			})
		})

		Convey("When values are invalid", func() {
			t.Setenv("TOPLANE_API_BASE_URL", "localhost:8000")
			t.Setenv("TOPLANE_DEFAULT_VERSION", "v26")
			t.Setenv("TOPLANE_APP_ENV", "qa")
			t.Setenv("TOPLANE_CSRF_SECRET", "short")

			_, err := Load()

			Convey("Then every problem is reported", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "TOPLANE_API_BASE_URL")
				So(err.Error(), ShouldContainSubstring, "TOPLANE_DEFAULT_VERSION")
				So(err.Error(), ShouldContainSubstring, "TOPLANE_APP_ENV")
				So(err.Error(), ShouldContainSubstring, "at least 32 characters")
			})
		})
	})
}

func TestLoadFromFile(t *testing.T) {
	Convey("Given a YAML configuration file", t, func() {
		path := filepath.Join(t.TempDir(), "toplane.yaml")
		err := os.WriteFile(path, []byte(`
server:
  address: ":7070"
upstream:
  base_url: "http://analysis:8000"
  analyze_timeout: "2m"
display:
  refresh_seconds: 5
log_level: debug
`), 0o600)
		So(err, ShouldBeNil)
		t.Setenv(ConfigFileEnv, path)

		Convey("When loading", func() {
			cfg, err := Load()

			Convey("Then file values apply over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Server.Address, ShouldEqual, ":7070")
				So(cfg.Upstream.BaseURL, ShouldEqual, "http://analysis:8000")
				So(cfg.Upstream.AnalyzeTimeout, ShouldEqual, 2*time.Minute)
				So(cfg.Display.RefreshSeconds, ShouldEqual, 5)
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.Upstream.HealthTimeout, ShouldEqual, 5*time.Second)
			})
		})

		Convey("When the environment also sets a value", func() {
			t.Setenv("TOPLANE_SERVER_ADDRESS", ":6060")
			cfg, err := Load()

			Convey("Then the environment wins", func() {
				So(err, ShouldBeNil)
				So(cfg.Server.Address, ShouldEqual, ":6060")
				So(cfg.Upstream.BaseURL, ShouldEqual, "http://analysis:8000")
			})
		})
	})

	Convey("Given a missing configuration file", t, func() {
		t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))

		Convey("Then loading fails", func() {
			_, err := Load()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "failed to load config file")
		})
	})
}

func TestLoadClient(t *testing.T) {
	Convey("Given a production environment without a CSRF secret", t, func() {
		t.Setenv(ConfigFileEnv, "")
		t.Setenv("TOPLANE_APP_ENV", "production")
		t.Setenv("TOPLANE_CSRF_SECRET", "")

		Convey("Then the client configuration still loads", func() {
			cfg, err := LoadClient()
			So(err, ShouldBeNil)
			So(cfg.Upstream.BaseURL, ShouldEqual, "http://localhost:8000")
		})

		Convey("Then an invalid base URL is still rejected", func() {
			t.Setenv("TOPLANE_API_BASE_URL", "ftp://example.com")
			_, err := LoadClient()
			So(err, ShouldNotBeNil)
		})
	})
}
