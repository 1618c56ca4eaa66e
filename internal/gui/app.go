package gui

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/amonteverde/cv-valorador/internal/agent"
	"github.com/amonteverde/cv-valorador/internal/config"
	"github.com/amonteverde/cv-valorador/internal/export"
	"github.com/amonteverde/cv-valorador/internal/ingestion"
	"github.com/amonteverde/cv-valorador/internal/models"
	"github.com/amonteverde/cv-valorador/internal/rubric"
)

const (
	// gmailCredentialsFilename is the expected filename for Gmail API credentials
	gmailCredentialsFilename = "credentials.json"
)

// App represents the main GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	config     *config.Config
	rubricCfg  *rubric.Config
	agent      *agent.ValoradorAgent
	calibrated bool
	ctx        context.Context
	cancelFunc context.CancelFunc

	// UI Components
	gmailStatusLabel *widget.Label
	authenticateBtn  *widget.Button
	subjectEntry     *widget.Entry
	calibratedCheck  *widget.Check
	processGmailBtn  *widget.Button
	processLocalBtn  *widget.Button
	cancelBtn        *widget.Button
	progressBar      *widget.ProgressBar
	progressLabel    *widget.Label
	resultsTable     *widget.Table
	exportBtn        *widget.Button

	results []models.CandidateResult
}

// NewApp creates a new GUI application
func NewApp() *App {
	a := app.New()
	w := a.NewWindow("CV Valorador")
	w.Resize(fyne.NewSize(1100, 700))

	guiApp := &App{
		fyneApp:    a,
		mainWindow: w,
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		cfg = config.DefaultConfig()
	}
	guiApp.config = cfg

	guiApp.rubricCfg = loadRubric(cfg.RubricPath)
	guiApp.calibrated = cfg.CalibratedDefault

	valorador, err := agent.NewValoradorAgent(guiApp.rubricCfg, cfg.UploadsDir, cfg.GmailCredentialsPath)
	if err != nil {
		// A rubric that fails validation is unusable; fall back to the
		// embedded default so the app still opens.
		log.Printf("Failed to build agent from configured rubric: %v", err)
		guiApp.rubricCfg = rubric.Default()
		valorador, _ = agent.NewValoradorAgent(guiApp.rubricCfg, cfg.UploadsDir, cfg.GmailCredentialsPath)
	}
	guiApp.agent = valorador

	// Setup UI
	guiApp.setupUI()

	return guiApp
}

// loadRubric loads the rubric at path, or the embedded default when path is
// empty or unreadable
func loadRubric(path string) *rubric.Config {
	if path == "" {
		return rubric.Default()
	}
	cfg, err := rubric.Load(path)
	if err != nil {
		log.Printf("Failed to load rubric from %s, using default: %v", path, err)
		return rubric.Default()
	}
	return cfg
}

// Run starts the GUI application
func (a *App) Run() {
	a.mainWindow.ShowAndRun()
}

// setupUI initializes all UI components
func (a *App) setupUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("Valorar CVs", a.createProcessTab()),
		container.NewTabItem("Rúbrica", a.createRubricTab()),
		container.NewTabItem("Configuración", a.createSettingsTab()),
	)

	a.mainWindow.SetContent(tabs)
}

// createProcessTab creates the main processing tab
func (a *App) createProcessTab() fyne.CanvasObject {
	// Gmail authentication section
	a.gmailStatusLabel = widget.NewLabel("Gmail: Not Authenticated")
	a.authenticateBtn = widget.NewButton("Authenticate Gmail", a.handleAuthenticate)

	authSection := container.NewVBox(
		widget.NewLabel("Gmail Authentication"),
		container.NewHBox(a.gmailStatusLabel, a.authenticateBtn),
	)

	// Source section: subject filter for Gmail, or the local uploads folder
	a.subjectEntry = widget.NewEntry()
	a.subjectEntry.SetPlaceHolder("e.g., Convocatoria Categorización")

	a.calibratedCheck = widget.NewCheck("Aplicar calibración", func(checked bool) {
		a.calibrated = checked
	})
	a.calibratedCheck.SetChecked(a.calibrated)

	sourceSection := container.NewVBox(
		widget.NewLabel("Email Subject Filter"),
		a.subjectEntry,
		a.calibratedCheck,
	)

	// Progress section
	a.progressBar = widget.NewProgressBar()
	a.progressLabel = widget.NewLabel("Ready")
	a.processGmailBtn = widget.NewButton("Valorar desde Gmail", a.handleProcessGmail)
	a.processLocalBtn = widget.NewButton("Valorar carpeta de subidas", a.handleProcessLocal)
	a.cancelBtn = widget.NewButton("Cancel", a.handleCancel)
	a.cancelBtn.Disable()

	progressSection := container.NewVBox(
		a.progressLabel,
		a.progressBar,
		container.NewHBox(a.processGmailBtn, a.processLocalBtn, a.cancelBtn),
	)

	// Results section: rank, name, one column per rubric section, total and
	// category
	sections := a.rubricCfg.Sections
	cols := 5 + len(sections)

	a.resultsTable = widget.NewTable(
		func() (int, int) {
			return len(a.results) + 1, cols // +1 for header
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("Template")
		},
		func(id widget.TableCellID, cell fyne.CanvasObject) {
			label := cell.(*widget.Label)
			if id.Row == 0 {
				// Header
				headers := []string{"Puesto", "Candidato", "Unidad"}
				for _, sec := range sections {
					headers = append(headers, sec.Name)
				}
				headers = append(headers, "Total", "Categoría")
				if id.Col < len(headers) {
					label.SetText(headers[id.Col])
					label.TextStyle = fyne.TextStyle{Bold: true}
				}
			} else if id.Row-1 < len(a.results) {
				result := a.results[id.Row-1]
				switch {
				case id.Col == 0:
					label.SetText(fmt.Sprintf("%d", result.Rank))
				case id.Col == 1:
					label.SetText(result.Name)
				case id.Col == 2:
					label.SetText(result.Unit)
				case id.Col < 3+len(sections):
					sec := sections[id.Col-3]
					label.SetText(fmt.Sprintf("%d", result.Result.SectionSubtotals[sec.Name]))
				case id.Col == 3+len(sections):
					label.SetText(fmt.Sprintf("%d", result.Result.Total))
				default:
					label.SetText(result.Result.Category)
				}
			}
		},
	)
	a.resultsTable.SetColumnWidth(0, 60)
	a.resultsTable.SetColumnWidth(1, 180)
	a.resultsTable.SetColumnWidth(2, 100)
	for i := range sections {
		a.resultsTable.SetColumnWidth(3+i, 100)
	}
	a.resultsTable.SetColumnWidth(3+len(sections), 80)
	a.resultsTable.SetColumnWidth(4+len(sections), 220)

	a.exportBtn = widget.NewButton("Export to Excel", a.handleExport)
	a.exportBtn.Disable()

	resultsSection := container.NewVBox(
		widget.NewLabel("Results"),
		container.NewScroll(a.resultsTable),
		a.exportBtn,
	)

	// Main layout with scrolling
	content := container.NewVScroll(
		container.NewVBox(
			authSection,
			widget.NewSeparator(),
			sourceSection,
			widget.NewSeparator(),
			progressSection,
			widget.NewSeparator(),
			resultsSection,
		),
	)

	return content
}

// createRubricTab shows the active rubric: section caps and the category
// table, so evaluators can see the cut points without opening the YAML
func (a *App) createRubricTab() fyne.CanvasObject {
	items := []fyne.CanvasObject{
		widget.NewLabelWithStyle(fmt.Sprintf("Rúbrica versión %s (máximo %d puntos)", a.rubricCfg.Version, a.rubricCfg.GlobalMax),
			fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Secciones", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	}

	for _, sec := range a.rubricCfg.Sections {
		items = append(items, widget.NewLabel(fmt.Sprintf("%s — tope %d puntos, %d detectores", sec.Name, sec.Cap, len(sec.Items()))))
	}

	items = append(items,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Categorías", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)
	for _, cat := range a.rubricCfg.Categories {
		items = append(items, widget.NewLabel(fmt.Sprintf("%s: %d a %d puntos", cat.Label, cat.Min, cat.Max)))
	}

	return container.NewVScroll(container.NewVBox(items...))
}

// createSettingsTab creates the settings tab
func (a *App) createSettingsTab() fyne.CanvasObject {
	rubricEntry := widget.NewEntry()
	rubricEntry.SetText(a.config.RubricPath)
	rubricEntry.SetPlaceHolder("empty = embedded default rubric")

	gmailCredsEntry := widget.NewEntry()
	gmailCredsEntry.SetText(a.config.GmailCredentialsPath)

	uploadsEntry := widget.NewEntry()
	uploadsEntry.SetText(a.config.UploadsDir)

	calibratedCheck := widget.NewCheck("Calibrar por defecto", nil)
	calibratedCheck.SetChecked(a.config.CalibratedDefault)

	rubricBtn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err == nil && uc != nil {
				rubricEntry.SetText(uc.URI().Path())
				uc.Close()
			}
		}, a.mainWindow)
	})

	gmailCredsBtn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err == nil && uc != nil {
				gmailCredsEntry.SetText(uc.URI().Path())
				uc.Close()
			}
		}, a.mainWindow)
	})

	form := widget.NewForm(
		widget.NewFormItem("Rubric File", container.NewBorder(nil, nil, nil, rubricBtn, rubricEntry)),
		widget.NewFormItem("Gmail Credentials", container.NewBorder(nil, nil, nil, gmailCredsBtn, gmailCredsEntry)),
		widget.NewFormItem("Uploads Directory", uploadsEntry),
		widget.NewFormItem("Calibration", calibratedCheck),
	)

	saveBtn := widget.NewButton("Save Settings", func() {
		a.config.RubricPath = rubricEntry.Text
		a.config.GmailCredentialsPath = gmailCredsEntry.Text
		a.config.UploadsDir = uploadsEntry.Text
		a.config.CalibratedDefault = calibratedCheck.Checked

		if err := a.config.Save(); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}

		dialog.ShowInformation("Success", "Settings saved successfully.\nRestart the app to apply a new rubric.", a.mainWindow)
	})

	validateBtn := widget.NewButton("Validate", func() {
		if err := a.config.Validate(); err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}
		if rubricEntry.Text != "" {
			if _, err := rubric.Load(rubricEntry.Text); err != nil {
				dialog.ShowError(fmt.Errorf("rubric validation failed: %w", err), a.mainWindow)
				return
			}
		}
		dialog.ShowInformation("Success", "Configuration is valid", a.mainWindow)
	})

	return container.NewVBox(
		form,
		container.NewHBox(saveBtn, validateBtn),
	)
}

// handleAuthenticate handles Gmail authentication
func (a *App) handleAuthenticate() {
	credsPath := a.config.GmailCredentialsPath
	if credsPath == "" {
		credsPath = gmailCredentialsFilename
	}

	if _, err := os.Stat(credsPath); os.IsNotExist(err) {
		dialog.ShowError(fmt.Errorf("%s not found. Please configure Gmail credentials in Settings", gmailCredentialsFilename), a.mainWindow)
		return
	}

	// Show loading dialog
	progressDialog := dialog.NewCustomWithoutButtons("Authenticating",
		widget.NewLabel("Authenticating with Gmail...\nCheck the console for the OAuth URL if your browser doesn't open."),
		a.mainWindow)
	progressDialog.Show()

	a.authenticateBtn.Disable()

	// Run authentication in background
	go func() {
		uploadsDir := a.config.UploadsDir
		if uploadsDir == "" {
			uploadsDir = "uploads"
		}

		// Handler creation triggers the OAuth flow if token.json is missing
		_, err := ingestion.NewGmailHandler(uploadsDir, credsPath)

		// All UI updates must be done on the main thread using fyne.Do
		if err != nil {
			fyne.Do(func() {
				progressDialog.Hide()
				a.authenticateBtn.Enable()
				dialog.ShowError(fmt.Errorf("authentication failed: %w", err), a.mainWindow)
			})
			return
		}

		fyne.Do(func() {
			progressDialog.Hide()
			a.authenticateBtn.Enable()
			a.gmailStatusLabel.SetText("Gmail: Authenticated")
			dialog.ShowInformation("Success", "Gmail authenticated successfully!\nYou can now valorate CVs from Gmail.", a.mainWindow)
		})
	}()
}

// handleProcessGmail scores CVs fetched from Gmail by subject
func (a *App) handleProcessGmail() {
	if a.subjectEntry.Text == "" {
		dialog.ShowError(fmt.Errorf("please enter an email subject filter"), a.mainWindow)
		return
	}

	subject := a.subjectEntry.Text
	a.runProcessing(func(ctx context.Context) error {
		return a.agent.IngestFromGmailWithContext(ctx, subject, a.calibrated)
	})
}

// handleProcessLocal scores CVs already placed in the uploads directory
func (a *App) handleProcessLocal() {
	a.runProcessing(func(ctx context.Context) error {
		return a.agent.IngestFromUploadWithContext(ctx, a.calibrated)
	})
}

// runProcessing wires progress reporting, runs the ingestion in the
// background and refreshes the results table when it finishes
func (a *App) runProcessing(run func(ctx context.Context) error) {
	a.processGmailBtn.Disable()
	a.processLocalBtn.Disable()
	a.cancelBtn.Enable()
	a.exportBtn.Disable()

	a.ctx, a.cancelFunc = context.WithCancel(context.Background())

	a.agent.SetProgressCallback(func(current, total int, message string) {
		fyne.Do(func() {
			a.progressBar.SetValue(float64(current) / float64(total))
			a.progressLabel.SetText(message)
		})
	})

	go func() {
		err := run(a.ctx)

		// Wrap ALL UI updates in fyne.Do()
		fyne.Do(func() {
			a.processGmailBtn.Enable()
			a.processLocalBtn.Enable()
			a.cancelBtn.Disable()

			if err != nil {
				if err == context.Canceled {
					a.progressLabel.SetText("Processing canceled")
				} else {
					a.progressLabel.SetText("Error: " + err.Error())
					dialog.ShowError(err, a.mainWindow)
				}
				return
			}

			a.results = a.agent.GetResults()
			a.resultsTable.Refresh()
			a.exportBtn.Enable()

			a.progressLabel.SetText(fmt.Sprintf("Complete! Valorated %d candidates", len(a.results)))

			fyne.CurrentApp().SendNotification(&fyne.Notification{
				Title:   "Processing Complete",
				Content: fmt.Sprintf("Successfully valorated %d candidates", len(a.results)),
			})
		})
	}()
}

// handleCancel handles cancellation of processing
func (a *App) handleCancel() {
	if a.cancelFunc != nil {
		a.cancelFunc()
		a.progressLabel.SetText("Canceling...")
	}
}

// handleExport handles exporting results to Excel
func (a *App) handleExport() {
	if len(a.results) == 0 {
		dialog.ShowError(fmt.Errorf("no results to export"), a.mainWindow)
		return
	}

	// Create default filename with timestamp
	timestamp := time.Now().Format("2006-01-02_150405")
	defaultName := fmt.Sprintf("Valoracion_CV_%s.xlsx", timestamp)

	saveDialog := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		defer uc.Close()

		outputPath := uc.URI().Path()

		if err := export.ExportToExcel(a.results, a.rubricCfg, a.calibrated, outputPath); err != nil {
			dialog.ShowError(fmt.Errorf("failed to export: %w", err), a.mainWindow)
			return
		}

		dialog.ShowInformation("Success", "Results exported successfully to "+filepath.Base(outputPath), a.mainWindow)
	}, a.mainWindow)
	saveDialog.SetFileName(defaultName)
	saveDialog.Show()
}
