package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"nyiyui.ca/hato/rosen/tal"
	"nyiyui.ca/hato/rosen/tal/grid"
	"nyiyui.ca/hato/rosen/tal/path"
	"nyiyui.ca/hato/rosen/tal/track"
	"nyiyui.ca/hato/rosen/tal/train"
)

type Config struct {
	CellSize int `json:"cell-size"`

	// Costs and the turn length are derived from the cell size when 0.
	StraightCost int `json:"straight-cost"`
	DiagonalCost int `json:"diagonal-cost"`
	TurnCost     int `json:"turn-cost"`

	// TurnLength is how far a train travels through a turn. The drawn curve keeps its
	// geometry, so overriding it only changes how long trains take through turns.
	TurnLength float64 `json:"turn-length"`

	DistanceWeight  float64  `json:"distance-weight"`
	AlignmentWeight float64  `json:"alignment-weight"`
	SearchLimit     int      `json:"search-limit"`
	Trace           bool     `json:"trace"`
	Tick            Duration `json:"tick"`
	Seed            int64    `json:"seed"`
	Spawn           Spawn    `json:"spawn"`
	KujoAddr        string   `json:"kujo-addr"`
	SakuragiAddr    string   `json:"sakuragi-addr"`
	CORSOrigins     []string `json:"cors-origins"`
}

// Spawn is what a spawn click places.
type Spawn struct {
	Speed  float64 `json:"speed"`
	Track  int     `json:"track"`
	Dist   float64 `json:"dist"`
	Cars   int     `json:"cars"`
	Gap    float64 `json:"gap"`
	Length float64 `json:"length"`
}

// Duration is a time.Duration written as a string like "16ms".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func Default() Config {
	pc := path.NewConf(32)
	return Config{
		CellSize:        32,
		DistanceWeight:  pc.DistanceWeight,
		AlignmentWeight: pc.AlignmentWeight,
		SearchLimit:     pc.SearchLimit,
		Tick:            Duration(time.Second / 60),
		Seed:            1,
		Spawn: Spawn{
			Speed:  250,
			Track:  0,
			Dist:   0,
			Cars:   4,
			Gap:    5,
			Length: 20,
		},
		KujoAddr:     "127.0.0.1:8081",
		SakuragiAddr: "127.0.0.1:8080",
		CORSOrigins:  []string{"http://localhost:8080"},
	}
}

// Load reads a config file on top of Default.
func Load(name string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(name)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", name, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.CellSize <= 0 || c.CellSize%2 != 0 {
		return fmt.Errorf("cell-size %d must be positive and even", c.CellSize)
	}
	if c.StraightCost < 0 || c.DiagonalCost < 0 || c.TurnCost < 0 || c.TurnLength < 0 {
		return errors.New("costs and turn-length must not be negative")
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick %s must be positive", time.Duration(c.Tick))
	}
	if c.Spawn.Speed <= 0 {
		return fmt.Errorf("spawn speed %v must be positive", c.Spawn.Speed)
	}
	if err := c.Form().Validate(); err != nil {
		return fmt.Errorf("spawn: %w", err)
	}
	return nil
}

func (c Config) Grid() grid.Conf {
	cf := grid.NewConf(c.CellSize)
	if c.StraightCost != 0 {
		cf.StraightCost = c.StraightCost
	}
	if c.DiagonalCost != 0 {
		cf.DiagonalCost = c.DiagonalCost
	}
	if c.TurnCost != 0 {
		cf.TurnCost = c.TurnCost
	}
	return cf
}

func (c Config) Track() track.Conf {
	cf := track.NewConf(c.CellSize)
	if c.TurnLength != 0 {
		cf.TurnLength = c.TurnLength
	}
	return cf
}

func (c Config) Path() path.Conf {
	return path.Conf{
		Grid:            c.Grid(),
		Track:           c.Track(),
		DistanceWeight:  c.DistanceWeight,
		AlignmentWeight: c.AlignmentWeight,
		SearchLimit:     c.SearchLimit,
		Trace:           c.Trace,
	}
}

func (c Config) World() tal.Conf {
	return tal.Conf{
		Path: c.Path(),
		Tick: time.Duration(c.Tick),
		Seed: c.Seed,
	}
}

func (c Config) Form() train.Form {
	return train.Form{
		Cars:   c.Spawn.Cars,
		Gap:    c.Spawn.Gap,
		Length: c.Spawn.Length,
	}
}
