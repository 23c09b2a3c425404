// SousChef — a voice-guided cooking assistant.
//
// Usage:
//
//	souschef [-verbose] [-quiet] [-data DIR] [-voice] [-serve ADDR]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/demilade/souschef/internal/display"
	"github.com/demilade/souschef/internal/domain"
	"github.com/demilade/souschef/internal/handsfree"
	"github.com/demilade/souschef/internal/interpret"
	"github.com/demilade/souschef/internal/logger"
	"github.com/demilade/souschef/internal/recipe"
	"github.com/demilade/souschef/internal/server"
	"github.com/demilade/souschef/internal/session"
	"github.com/demilade/souschef/internal/speech"
	"github.com/demilade/souschef/internal/timer"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".souschef/souschef.log", "file to write logs to (use \"stderr\" to log to console)")
	dataDir := flag.String("data", "", "directory containing recipes.json and ingredients.json (built-in recipes when empty)")
	language := flag.String("lang", "english", "display language for ingredient names")
	noSpeech := flag.Bool("no-speech", false, "disable text-to-speech even if Azure keys are set")
	voice := flag.Bool("voice", false, "enable hands-free voice input via local Whisper STT")
	whisperBin := flag.String("whisper-bin", "whisper-cli", "path to the whisper-cpp CLI binary")
	whisperModel := flag.String("whisper-model", "bin/ggml-small.bin", "path to the Whisper GGML model file")
	phraseSecs := flag.Int("phrase-secs", 4, "seconds per voice recording chunk")
	serveAddr := flag.String("serve", "", "run the HTTP API on this address instead of the terminal UI (e.g. :8080)")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" && *serveAddr == "" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package (used by third-party libs like
	// the whisper transcriber) to the same output so it doesn't spam
	// the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	// Set up context — cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire the recipe catalog. A data directory gets the JSON store; a
	// broken catalog degrades to an empty one rather than aborting.
	var recipes domain.RecipeSource
	book := recipe.NewBook()
	if *dataDir != "" {
		src, err := recipe.NewSource(filepath.Join(*dataDir, "recipes.json"), log)
		if err != nil {
			log.Error("recipe catalog unavailable: %v", err)
		}
		recipes = src

		b, err := recipe.LoadBook(filepath.Join(*dataDir, "ingredients.json"), log)
		if err != nil {
			log.Warn("ingredient catalog unavailable: %v", err)
		}
		book = b
	} else {
		recipes = recipe.NewMemorySource()
	}

	interp := interpret.New(log)

	// Headless HTTP mode.
	if *serveAddr != "" {
		srv := server.New(recipes, interp, log)
		log.Info("http: listening on %s", *serveAddr)
		httpServer := &http.Server{
			Addr:              *serveAddr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		if err := httpServer.ListenAndServe(); err != nil {
			fmt.Fprintf(os.Stderr, "error: http server: %v\n", err)
			os.Exit(1)
		}
		return
	}

	sess := session.New(recipes, log)
	ui := display.NewUI(sess)
	textNotifier := display.NewCLINotifier(log, ui.Printf)

	// Build the active notifier. If TTS is available, wrap the text
	// notifier with a SpeakingNotifier that also voices messages.
	var activeNotifier domain.Notifier = textNotifier
	var speaker domain.Speaker = speech.NewNoOpSpeaker(log)

	azureKey := os.Getenv(speech.EnvAzureSpeechKey)
	azureRegion := os.Getenv(speech.EnvAzureSpeechRegion)

	if azureKey != "" && azureRegion != "" && !*noSpeech {
		ttsClient := speech.NewAzureClient(azureKey, azureRegion, log)

		player, err := speech.NewPlayer(log)
		if err != nil {
			log.Error("audio player init failed, speech disabled: %v", err)
		} else {
			speaker = speech.NewVoice(ttsClient, player, log)
			activeNotifier = speech.NewSpeakingNotifier(textNotifier, speaker, log)
			log.Info("TTS enabled (voice=%s, region=%s)", speech.DefaultVoice, azureRegion)
		}
	} else if !*noSpeech {
		log.Info("TTS disabled: set %s and %s env vars to enable", speech.EnvAzureSpeechKey, speech.EnvAzureSpeechRegion)
	}

	// Build voice input (STT) if enabled.
	var stt domain.Transcriber
	if *voice {
		if _, err := os.Stat(*whisperModel); err != nil {
			fmt.Fprintf(os.Stderr, "error: whisper model not found at %s\n", *whisperModel)
			os.Exit(1)
		}
		os.MkdirAll(".souschef-stt", 0o755)
		stt = speech.NewWhisper(*whisperBin, *whisperModel, log,
			speech.WithTempDir(".souschef-stt"),
		)
		log.Info("voice input enabled (bin=%s, model=%s, phrase=%ds)", *whisperBin, *whisperModel, *phraseSecs)
	}

	// Start background timer supervisor.
	supervisor := timer.New(sess, activeNotifier, log)
	supervisor.Start(ctx)
	defer supervisor.Stop()

	app := &cliApp{
		session:     sess,
		interp:      interp,
		notifier:    activeNotifier,
		speaker:     speaker,
		stt:         stt,
		phraseLimit: time.Duration(*phraseSecs) * time.Second,
		language:    *language,
		book:        book,
		log:         log,
		ui:          ui,
	}

	fmt.Println(display.RenderBanner())

	if stt != nil {
		fmt.Println(display.BannerStyle.Render("  Voice ready — type 'listen' to go hands-free, or type commands."))
		fmt.Println(display.BannerStyle.Render("  Type 'quit' to exit."))
	} else {
		fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	}
	fmt.Println()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal — blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}

type cliApp struct {
	session     *session.Engine
	interp      *interpret.Interpreter
	notifier    domain.Notifier
	speaker     domain.Speaker
	stt         domain.Transcriber // nil when voice input is disabled
	phraseLimit time.Duration
	language    string
	book        *recipe.Book
	log         *logger.Logger
	ui          *display.UI

	voiceCancel context.CancelFunc // non-nil while the hands-free loop runs
}

// say prints a conversational line and speaks it. For raw formatting
// (menus, ingredient tables) use the ui helpers directly — those
// shouldn't be spoken.
func (a *cliApp) say(ctx context.Context, text string) {
	a.ui.PrintChat(text)
	if _, err := a.speaker.Speak(ctx, text); err != nil {
		a.log.Warn("speak: %v", err)
	}
}

func (a *cliApp) run(ctx context.Context) {
	a.say(ctx, speech.LineWelcome())
	a.ui.Println("")
	a.showRecipes(ctx)

	uiCh := a.ui.InputChan()

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if a.handleCommand(ctx, input) {
			return
		}
	}
}

// handleCommand processes one typed line. Returns true on quit.
func (a *cliApp) handleCommand(ctx context.Context, input string) bool {
	lower := strings.ToLower(input)

	switch {
	case lower == "quit" || lower == "exit":
		a.quit(ctx)
		return true
	case lower == "help":
		a.showHelp()
		return false
	case lower == "list" || lower == "recipes":
		a.showRecipes(ctx)
		return false
	case lower == "history":
		a.showHistory()
		return false
	case lower == "listen" || lower == "voice":
		a.startVoice(ctx)
		return false
	case lower == "stop":
		a.stopVoice(ctx)
		return false
	}

	// A bare number selects a recipe from the list.
	if idx, err := strconv.Atoi(lower); err == nil {
		a.selectRecipe(ctx, idx)
		return false
	}

	// "start"/"begin" without "timer" restarts the bound recipe from the
	// first step, same as the voice phrase.
	if (strings.Contains(lower, "start") || strings.Contains(lower, "begin")) &&
		!strings.Contains(lower, "timer") {
		a.restart(ctx)
		return false
	}

	// Everything else goes to the interpreter.
	a.dispatch(ctx, input)
	return false
}

// restart jumps back to the first step and announces it.
func (a *cliApp) restart(ctx context.Context) {
	r := a.session.Recipe()
	if r == nil || len(r.Steps) == 0 || !a.session.Restart() {
		a.say(ctx, speech.LineSelectFirst())
		return
	}
	line := speech.LineStarting(r.Name, r.Steps[0].Instruction)
	a.session.Record(domain.RoleAssistant, line)
	a.say(ctx, line)
}

// dispatch runs one command through the interpreter and applies the
// result to the session.
func (a *cliApp) dispatch(ctx context.Context, input string) {
	a.session.Record(domain.RoleUser, input)

	res := a.interp.Interpret(input, a.session.Recipe(), a.session.Snapshot())
	a.session.Apply(res)
	a.session.Record(domain.RoleAssistant, res.Text)

	a.say(ctx, res.Text)
}

func (a *cliApp) showRecipes(ctx context.Context) {
	recipes, err := a.session.Recipes().List(ctx)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error loading recipes: %v", err))
		return
	}
	if len(recipes) == 0 {
		a.ui.PrintHint("No recipes available.")
		return
	}

	a.ui.PrintStep("Available recipes:")
	a.ui.Println("")
	for i, r := range recipes {
		a.ui.PrintInstruction(fmt.Sprintf("[%d] %s", i+1, r.Name))
		meta := fmt.Sprintf("%s · %s · ~%d min · serves %s",
			r.Origin.Country, r.Difficulty, r.EstimatedTimeMinutes, r.ServingSize)
		a.ui.PrintHint(meta)
		a.ui.Println("")
	}
	a.ui.PrintChat("Pick a recipe by number, or type 'help' for commands.")
}

func (a *cliApp) selectRecipe(ctx context.Context, displayIdx int) {
	recipes, err := a.session.Recipes().List(ctx)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}

	idx := displayIdx - 1
	if idx < 0 || idx >= len(recipes) {
		a.ui.PrintHint(fmt.Sprintf("No recipe number %d. Type 'list' to see the menu.", displayIdx))
		return
	}

	r, err := a.session.BindRecipe(ctx, recipes[idx].ID)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Error: %v", err))
		return
	}

	a.showRecipeDetail(r)
	a.say(ctx, fmt.Sprintf("We are cooking %s. Say 'start' when you are ready, or ask for the ingredients.", r.Name))
}

func (a *cliApp) showRecipeDetail(r *domain.Recipe) {
	a.ui.PrintStep(fmt.Sprintf("=== %s ===", r.Name))
	a.ui.PrintHint(fmt.Sprintf("%s · %s · ~%d min · serves %s",
		r.Origin.Country, r.Difficulty, r.EstimatedTimeMinutes, r.ServingSize))

	a.ui.Println("")
	a.ui.PrintStep("Ingredients:")
	for _, ing := range r.Ingredients {
		name := a.book.Name(ing.IngredientID, a.language)
		opt := ""
		if ing.Optional {
			opt = " (optional)"
		}
		line := fmt.Sprintf("  - %v %s %s%s", ing.Quantity, ing.Unit, name, opt)
		if ing.Notes != "" {
			line += ", " + ing.Notes
		}
		a.ui.PrintInstruction(line)
	}
	a.ui.PrintHint(fmt.Sprintf("Steps: %d", len(r.Steps)))
}

func (a *cliApp) showHistory() {
	turns := a.session.Dialogue().Turns()
	if len(turns) == 0 {
		a.ui.PrintHint("No conversation yet.")
		return
	}
	a.ui.PrintStep("Conversation so far:")
	for _, t := range turns {
		switch t.Role {
		case domain.RoleUser:
			a.ui.PrintUserInput(t.Text)
		default:
			a.ui.PrintChat(t.Text)
		}
	}
}

// startVoice launches the hands-free loop in the background.
func (a *cliApp) startVoice(ctx context.Context) {
	if a.stt == nil {
		a.ui.PrintHint("Voice input is disabled. Restart with -voice and a Whisper model.")
		return
	}
	if a.session.VoiceState() != domain.VoiceStopped {
		a.ui.PrintHint("Already listening.")
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	a.voiceCancel = cancel

	loop := handsfree.New(a.session, a.interp, a.stt, a.notifier, a.log,
		handsfree.WithPhraseLimit(a.phraseLimit),
		handsfree.WithHeardFunc(a.ui.PrintVoice),
	)
	go func() {
		loop.Run(loopCtx)
		cancel()
	}()

	a.say(ctx, "Hands-free mode on. Say 'pause' to mute me, 'stop' to end.")
}

// stopVoice ends hands-free mode from the keyboard.
func (a *cliApp) stopVoice(ctx context.Context) {
	if a.session.VoiceState() == domain.VoiceStopped {
		a.ui.PrintHint("Voice mode is not running.")
		return
	}
	a.session.SetListening(false)
	if a.voiceCancel != nil {
		a.voiceCancel()
		a.voiceCancel = nil
	}
	a.say(ctx, speech.LineStopAck())
}

func (a *cliApp) quit(ctx context.Context) {
	a.stopVoiceQuiet()
	a.say(ctx, "Goodbye! Happy cooking.")
	// Brief pause so TTS can start the goodbye line.
	time.Sleep(300 * time.Millisecond)
	a.ui.Quit()
}

func (a *cliApp) stopVoiceQuiet() {
	a.session.SetListening(false)
	if a.voiceCancel != nil {
		a.voiceCancel()
		a.voiceCancel = nil
	}
}

func (a *cliApp) showHelp() {
	a.ui.PrintStep("Commands:")
	a.ui.PrintInstruction("  list / recipes       Show available recipes")
	a.ui.PrintInstruction("  1, 2, 3...           Select a recipe by number")
	a.ui.PrintInstruction("  start / begin        Restart the recipe from step one")
	a.ui.PrintInstruction("  next step            Move to the next step")
	a.ui.PrintInstruction("  previous / back      Go back one step")
	a.ui.PrintInstruction("  repeat               Say the current step again")
	a.ui.PrintInstruction("  ingredients          Read the shopping list")
	a.ui.PrintInstruction("  set a timer for N minutes")
	a.ui.PrintInstruction("  listen / voice       Go hands-free (requires -voice)")
	a.ui.PrintInstruction("  stop                 End hands-free mode")
	a.ui.PrintInstruction("  history              Show the conversation so far")
	a.ui.PrintInstruction("  help                 Show this message")
	a.ui.PrintInstruction("  quit / exit          Exit")
}
