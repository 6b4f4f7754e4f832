package optim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/navcore/internal/config"
)

var tunables = map[string]func(c *config.Config) *float64{
	"align.kp":           func(c *config.Config) *float64 { return &c.Align.Gains.Kp },
	"align.ki":           func(c *config.Config) *float64 { return &c.Align.Gains.Ki },
	"align.kd":           func(c *config.Config) *float64 { return &c.Align.Gains.Kd },
	"align.precision":    func(c *config.Config) *float64 { return &c.Align.Precision },
	"nav.kp":             func(c *config.Config) *float64 { return &c.Nav.Gains.Kp },
	"nav.ki":             func(c *config.Config) *float64 { return &c.Nav.Gains.Ki },
	"nav.kd":             func(c *config.Config) *float64 { return &c.Nav.Gains.Kd },
	"nav.precision":      func(c *config.Config) *float64 { return &c.Nav.Precision },
	"nav.braking_factor": func(c *config.Config) *float64 { return &c.Nav.BrakingDistanceFactor },
	"rover.kp":           func(c *config.Config) *float64 { return &c.Rover.Heading.Kp },
	"rover.ki":           func(c *config.Config) *float64 { return &c.Rover.Heading.Ki },
	"rover.kd":           func(c *config.Config) *float64 { return &c.Rover.Heading.Kd },
	"avoid.detour":       func(c *config.Config) *float64 { return &c.Avoid.DetourDistance },
}

func TunableNames() []string {
	names := make([]string, 0, len(tunables))
	for name := range tunables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply returns a copy of base with params set; base is left untouched.
func Apply(base *config.Config, params map[string]float64) (*config.Config, error) {
	cfg := *base
	for name, v := range params {
		field, ok := tunables[name]
		if !ok {
			return nil, fmt.Errorf("unknown parameter %q (%s)", name, strings.Join(TunableNames(), ", "))
		}
		*field(&cfg) = v
	}
	return &cfg, nil
}

// ParseParam reads "name=v1,v2,..." or "name=start:stop:step".
func ParseParam(s string) (Param, error) {
	name, values, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || values == "" {
		return Param{}, fmt.Errorf("parameter %q: expected name=values", s)
	}
	if _, ok := tunables[name]; !ok {
		return Param{}, fmt.Errorf("unknown parameter %q (%s)", name, strings.Join(TunableNames(), ", "))
	}

	p := Param{Name: name}
	if parts := strings.Split(values, ":"); len(parts) == 3 {
		var r [3]float64
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return Param{}, fmt.Errorf("parameter %s: %w", name, err)
			}
			r[i] = v
		}
		start, stop, step := r[0], r[1], r[2]
		if step <= 0 || stop < start {
			return Param{}, fmt.Errorf("parameter %s: empty range %s", name, values)
		}
		for i := 0; ; i++ {
			v := start + float64(i)*step
			if v > stop+step*1e-9 {
				break
			}
			p.Values = append(p.Values, v)
		}
		return p, nil
	}

	for _, part := range strings.Split(values, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Param{}, fmt.Errorf("parameter %s: %w", name, err)
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}
