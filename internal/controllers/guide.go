package controllers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/csrf"
	"github.com/rahul4469/toplane-guide/internal/middleware"
	"github.com/rahul4469/toplane-guide/internal/models"
	"github.com/rahul4469/toplane-guide/internal/report"
	"github.com/rahul4469/toplane-guide/internal/services"
	"github.com/rahul4469/toplane-guide/internal/views"
	"go.uber.org/zap"
)

// Analyzer fetches patch analyses from the analysis service.
type Analyzer interface {
	Analyze(ctx context.Context, version string) (*models.AnalysisResult, error)
	AnalyzeContent(ctx context.Context, version, rawContent string) (*models.AnalysisResult, error)
}

// GuideController serves the guide page and runs analyses for its visitors.
type GuideController struct {
	displays  *models.DisplayService
	analyzer  Analyzer
	templates GuideTemplates
	options   GuideOptions
	logger    *zap.Logger

	// background analyses outlive their request; they stop with the controller
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// GuideTemplates holds the templates for the guide page.
type GuideTemplates struct {
	Guide *views.Template
}

// GuideOptions controls page behaviour.
type GuideOptions struct {
	AutoLoad       bool
	DefaultVersion string
	RefreshSeconds int
	IsDevelopment  bool
}

// NewGuideController creates a new GuideController. Call Close to stop
// in-flight analyses.
func NewGuideController(
	displays *models.DisplayService,
	analyzer Analyzer,
	templates GuideTemplates,
	options GuideOptions,
	logger *zap.Logger,
) *GuideController {
	if options.DefaultVersion == "" {
		options.DefaultVersion = models.LatestVersion
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &GuideController{
		displays:  displays,
		analyzer:  analyzer,
		templates: templates,
		options:   options,
		logger:    logger.Named("guide"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// GuideData holds data for the guide page template.
type GuideData struct {
	Phase        string
	Version      string // value of the version input
	Loading      bool
	ErrorMessage string
	Page         *report.Page
	UpdatedAt    time.Time
}

// cookieCheckParam marks the redirect that confirms a new visitor kept the
// visitor cookie.
const cookieCheckParam = "welcome"

// cookiesDisabledInfo is shown to clients that never send the visitor cookie back.
const cookiesDisabledInfo = "Cookies are disabled, so the guide does not load on its own. Submit a version to start an analysis."

// GetGuide renders the guide page. The first visit starts an analysis of the
// default version once the visitor cookie is known to stick; clients that
// drop it get the form only.
func (c *GuideController) GetGuide(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.MustCurrentVisitor(r)

	var info string
	display := c.displays.Get(visitor)
	if display.Phase == models.PhaseIdle && c.options.AutoLoad {
		switch {
		case !middleware.IsNewVisitor(r):
			display = c.start(visitor, c.options.DefaultVersion, "")
		case r.URL.Query().Get(cookieCheckParam) == "":
			http.Redirect(w, r, "/?"+cookieCheckParam+"=1", http.StatusSeeOther)
			return
		default:
			info = cookiesDisabledInfo
		}
	}

	data := c.pageData(r, display)
	data.Info = info
	c.templates.Guide.ExecuteHTTP(w, r, data)
}

// PostAnalyze validates the submitted version and starts an analysis.
// Invalid input is reported inline and leaves the display untouched.
func (c *GuideController) PostAnalyze(w http.ResponseWriter, r *http.Request) {
	visitor := middleware.MustCurrentVisitor(r)

	if err := r.ParseForm(); err != nil {
		c.renderFormError(w, r, visitor, "", "Invalid form data")
		return
	}

	input := r.FormValue("version")
	version, err := models.ParseVersion(input)
	if err != nil {
		c.renderFormError(w, r, visitor, input, formErrorMessage(err))
		return
	}

	rawContent, err := services.PreparePatchNotes(r.FormValue("raw_content"))
	if err != nil {
		c.renderFormError(w, r, visitor, input, err.Error())
		return
	}

	c.start(visitor, version, rawContent)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Close cancels in-flight analyses and waits for them to finish.
func (c *GuideController) Close() {
	c.cancel()
	c.wg.Wait()
}

// start moves the visitor to Loading and runs the analysis in the background.
// Overlapping analyses are not cancelled; whichever resolves last wins.
func (c *GuideController) start(visitor, version, rawContent string) models.Display {
	display := c.displays.Begin(visitor, version)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(visitor, version, rawContent)
	}()

	return display
}

func (c *GuideController) run(visitor, version, rawContent string) {
	logger := c.logger.With(zap.String("visitor", visitor), zap.String("version", version))
	start := time.Now()

	var (
		result *models.AnalysisResult
		err    error
	)
	if rawContent == "" {
		result, err = c.analyzer.Analyze(c.ctx, version)
	} else {
		result, err = c.analyzer.AnalyzeContent(c.ctx, version, rawContent)
	}

	if err != nil {
		logger.Warn("Analysis failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		c.displays.Reject(visitor, err)
		return
	}

	logger.Info("Analysis completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("changes", len(result.TopLaneChanges)),
	)
	c.displays.Resolve(visitor, result)
}

// pageData builds the template data for the visitor's display.
func (c *GuideController) pageData(r *http.Request, display models.Display) *views.TemplateData {
	guide := GuideData{
		Phase:     string(display.Phase),
		Version:   display.Version,
		Loading:   display.Phase == models.PhaseLoading,
		UpdatedAt: display.UpdatedAt,
	}
	if guide.Version == "" {
		guide.Version = c.options.DefaultVersion
	}
	if display.Phase == models.PhaseError {
		guide.ErrorMessage = display.ErrorMessage()
	}
	if display.Result != nil {
		page := report.Build(display.Result)
		guide.Page = &page
	}

	data := &views.TemplateData{
		Title:         "Top Lane Patch Guide",
		Description:   "Top lane champion changes, tier list and impact analysis for each patch.",
		CSRFToken:     csrf.Token(r),
		IsDevelopment: c.options.IsDevelopment,
		Data:          guide,
	}
	if guide.Loading {
		data.RefreshSeconds = c.options.RefreshSeconds
	}
	return data
}

// renderFormError renders the page with an inline error and the submitted
// input. The page does not auto-refresh so the message stays visible.
func (c *GuideController) renderFormError(w http.ResponseWriter, r *http.Request, visitor, input, errMsg string) {
	data := c.pageData(r, c.displays.Get(visitor))
	data.Error = errMsg
	data.RefreshSeconds = 0

	guide := data.Data.(GuideData)
	guide.Version = input
	data.Data = guide

	c.templates.Guide.ExecuteHTTPWithStatus(w, r, http.StatusUnprocessableEntity, data)
}

func formErrorMessage(err error) string {
	if errors.Is(err, models.ErrInvalidVersion) {
		return models.ErrInvalidVersion.Error()
	}
	return err.Error()
}
