// Package config holds the daemon settings. Values come from defaults, an
// optional YAML file, and command-line flags, in increasing priority.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/button-matrix/internal/gpio"
	"github.com/sweeney/button-matrix/internal/logic"
)

// Pins is the YAML form of gpio.Pins.
type Pins struct {
	ButtonGreen int `yaml:"button_green"`
	ButtonBlue  int `yaml:"button_blue"`
	LEDGreen    int `yaml:"led_green"`
	LEDBlue     int `yaml:"led_blue"`
}

// Messages are the texts shown for the two modes.
type Messages struct {
	Green string `yaml:"green"`
	Blue  string `yaml:"blue"`
}

// Color is the matrix color in YAML form.
type Color struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// Config contains every daemon setting.
type Config struct {
	Chip            string        `yaml:"chip"`
	Pins            Pins          `yaml:"pins"`
	Debounce        time.Duration `yaml:"debounce"`
	Poll            time.Duration `yaml:"poll"`
	Precedence      string        `yaml:"precedence"`
	RenderInHandler bool          `yaml:"render_in_handler"`
	Messages        Messages      `yaml:"messages"`
	Color           Color         `yaml:"color"`
	Input           string        `yaml:"input"`
	Broker          string        `yaml:"broker"`
	Heartbeat       time.Duration `yaml:"heartbeat"`
	HTTP            string        `yaml:"http"`
	WSBroker        string        `yaml:"ws_broker"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Chip: gpio.DefaultChip,
		Pins: Pins{
			ButtonGreen: gpio.DefaultPins.ButtonGreen,
			ButtonBlue:  gpio.DefaultPins.ButtonBlue,
			LEDGreen:    gpio.DefaultPins.LEDGreen,
			LEDBlue:     gpio.DefaultPins.LEDBlue,
		},
		Debounce:   logic.DebounceWindow,
		Poll:       time.Millisecond,
		Precedence: logic.GreenFirst.String(),
		Messages: Messages{
			Green: logic.GreenMessage,
			Blue:  logic.BlueMessage,
		},
		Color: Color{
			R: logic.DefaultColor.R,
			G: logic.DefaultColor.G,
			B: logic.DefaultColor.B,
		},
		Input:     "-",
		Broker:    "",
		Heartbeat: 15 * time.Minute,
		HTTP:      ":8080",
		WSBroker:  "=broker",
	}
}

// Load reads a YAML file over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Marshal returns the settings as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate rejects settings the daemon cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("debounce must be positive, got %v", c.Debounce))
	}
	if c.Poll <= 0 {
		errs = append(errs, fmt.Errorf("poll must be positive, got %v", c.Poll))
	}
	if _, ok := logic.ParsePrecedence(c.Precedence); !ok {
		errs = append(errs, fmt.Errorf("unknown precedence %q (want green-first or last-toggled)", c.Precedence))
	}
	pins := map[string]int{
		"button_green": c.Pins.ButtonGreen,
		"button_blue":  c.Pins.ButtonBlue,
		"led_green":    c.Pins.LEDGreen,
		"led_blue":     c.Pins.LEDBlue,
	}
	seen := make(map[int]string)
	for _, name := range []string{"button_green", "button_blue", "led_green", "led_blue"} {
		p := pins[name]
		if p < 0 || p > 53 {
			errs = append(errs, fmt.Errorf("pin %s out of range: %d", name, p))
			continue
		}
		if other, dup := seen[p]; dup {
			errs = append(errs, fmt.Errorf("pin %d used for both %s and %s", p, other, name))
		}
		seen[p] = name
	}
	if c.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("heartbeat must not be negative, got %v", c.Heartbeat))
	}
	return errors.Join(errs...)
}

// GPIOPins converts the pin settings for the gpio package.
func (c Config) GPIOPins() gpio.Pins {
	return gpio.Pins{
		ButtonGreen: c.Pins.ButtonGreen,
		ButtonBlue:  c.Pins.ButtonBlue,
		LEDGreen:    c.Pins.LEDGreen,
		LEDBlue:     c.Pins.LEDBlue,
	}
}

// LogicColor converts the color setting for the logic package.
func (c Config) LogicColor() logic.Color {
	return logic.Color{R: c.Color.R, G: c.Color.G, B: c.Color.B}
}

// PrecedencePolicy returns the parsed precedence. Call Validate first.
func (c Config) PrecedencePolicy() logic.Precedence {
	p, _ := logic.ParsePrecedence(c.Precedence)
	return p
}

// RegisterFlags defines one flag per setting on fs, bound to c.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Chip, "chip", c.Chip, "GPIO character device")
	fs.IntVar(&c.Pins.ButtonGreen, "pin-green", c.Pins.ButtonGreen, "Green button pin")
	fs.IntVar(&c.Pins.ButtonBlue, "pin-blue", c.Pins.ButtonBlue, "Blue button pin")
	fs.IntVar(&c.Pins.LEDGreen, "pin-led-green", c.Pins.LEDGreen, "Green indicator LED pin")
	fs.IntVar(&c.Pins.LEDBlue, "pin-led-blue", c.Pins.LEDBlue, "Blue indicator LED pin")
	fs.DurationVar(&c.Debounce, "debounce", c.Debounce, "Minimum spacing between accepted button edges")
	fs.DurationVar(&c.Poll, "poll", c.Poll, "Main loop polling interval")
	fs.StringVar(&c.Precedence, "precedence", c.Precedence, "Message shown when both modes are on (green-first, last-toggled)")
	fs.BoolVar(&c.RenderInHandler, "render-in-handler", c.RenderInHandler, "Redraw the display inside the button handler")
	fs.StringVar(&c.Messages.Green, "msg-green", c.Messages.Green, "Message for green mode")
	fs.StringVar(&c.Messages.Blue, "msg-blue", c.Messages.Blue, "Message for blue mode")
	fs.Var((*colorValue)(&c.Color), "color", "Matrix color as r,g,b")
	fs.StringVar(&c.Input, "input", c.Input, `Character input ("-" for stdin, or a serial device path)`)
	fs.StringVar(&c.Broker, "broker", c.Broker, "MQTT broker address (empty to disable)")
	fs.DurationVar(&c.Heartbeat, "heartbeat", c.Heartbeat, "Heartbeat interval (0 to disable)")
	fs.StringVar(&c.HTTP, "http", c.HTTP, "HTTP status address (empty to disable)")
	fs.StringVar(&c.WSBroker, "ws-broker", c.WSBroker, `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)
}

// Resolve parses args, loads the file named by -config if given, and lets
// every flag that was set on the command line override the file.
func Resolve(name string, args []string) (Config, error) {
	cfg := Default()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("config", "", "YAML config file")
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if *path == "" {
		return cfg, cfg.Validate()
	}

	fileCfg, err := Load(*path)
	if err != nil {
		return fileCfg, err
	}
	override := flag.NewFlagSet(name, flag.ContinueOnError)
	fileCfg.RegisterFlags(override)
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" || setErr != nil {
			return
		}
		setErr = override.Set(f.Name, f.Value.String())
	})
	if setErr != nil {
		return fileCfg, setErr
	}
	return fileCfg, fileCfg.Validate()
}

// colorValue parses "r,g,b".
type colorValue Color

func (v *colorValue) String() string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d,%d,%d", v.R, v.G, v.B)
}

func (v *colorValue) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("color %q: want r,g,b", s)
	}
	var ch [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return fmt.Errorf("color %q: %w", s, err)
		}
		ch[i] = uint8(n)
	}
	*v = colorValue{R: ch[0], G: ch[1], B: ch[2]}
	return nil
}
