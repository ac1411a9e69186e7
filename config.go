/*
 * config.go, part of gomecp.
 *
 *
 * Copyright 2024 Raul Mera <rmera{at}usach(dot)cl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 * gomecp is currently developed at the Universidad de Santiago de Chile
 * (USACH)
 *
 */

package mecp

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every configuration problem.
var ErrInvalidConfig = errors.New("invalid configuration")

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
}

// Float is a float64 that, in YAML, also accepts the Fortran double precision
// notation used by the old MECP input files ("5.d-5", "0.7D0").
type Float float64

// UnmarshalYAML implements yaml.Unmarshaler
func (F *Float) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", value.Line)
	}
	f, err := parseFloat(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %q is not a valid number", value.Line, value.Value)
	}
	*F = Float(f)
	return nil
}

// Files holds the names of the files read and written by one iteration.
// Empty optional names disable the corresponding output.
type Files struct {
	ProgFile        string `yaml:"progfile" validate:"required"`
	AbInitio        string `yaml:"abinitio" validate:"required"`
	InitialGeometry string `yaml:"initial_geometry,omitempty"`
	NextGeometry    string `yaml:"next_geometry" validate:"required"`
	FinalGeometry   string `yaml:"final_geometry" validate:"required"`
	Report          string `yaml:"report" validate:"required"`
	Trajectory      string `yaml:"trajectory,omitempty"`
	History         string `yaml:"history,omitempty"`
	Metrics         string `yaml:"metrics,omitempty"`
}

// ThresholdConfig are the convergence thresholds, as they appear in the
// configuration file.
type ThresholdConfig struct {
	MaxDisplacement  Float `yaml:"max_displacement" validate:"gt=0"`
	RMSDisplacement  Float `yaml:"rms_displacement" validate:"gt=0"`
	MaxGradient      Float `yaml:"max_gradient" validate:"gt=0"`
	RMSGradient      Float `yaml:"rms_gradient" validate:"gt=0"`
	EnergyDifference Float `yaml:"energy_difference" validate:"gt=0"`
}

// Config is everything an iteration needs besides the state and the ab initio results.
type Config struct {
	Atoms       int             `yaml:"atoms" validate:"gt=0"`
	Thresholds  ThresholdConfig `yaml:"thresholds"`
	MaxStepSize Float           `yaml:"max_step_size" validate:"gt=0"`
	FacPP       Float           `yaml:"fac_pp" validate:"gt=0"`
	FacP        Float           `yaml:"fac_p" validate:"gt=0"`
	MaxSteps    int             `yaml:"max_steps" validate:"gte=0"`
	ShowHessian string          `yaml:"show_hessian" validate:"oneof=none full sign"`
	Files       Files           `yaml:"files"`
}

// DefaultConfig returns a configuration with the values of the original program
// and the classic file names. Atoms is left at 0, it must always be set.
func DefaultConfig() *Config {
	t := DefaultThresholds()
	return &Config{
		Thresholds: ThresholdConfig{
			MaxDisplacement:  Float(t.MaxDX),
			RMSDisplacement:  Float(t.RMSDX),
			MaxGradient:      Float(t.MaxG),
			RMSGradient:      Float(t.RMSG),
			EnergyDifference: Float(t.DE),
		},
		MaxStepSize: DefaultMaxStep,
		FacPP:       DefaultFacPP,
		FacP:        DefaultFacP,
		ShowHessian: "none",
		Files: Files{
			ProgFile:      "ProgFile",
			AbInitio:      "ab_initio",
			NextGeometry:  "geom",
			FinalGeometry: "final_geom",
			Report:        "ReportFile",
			Trajectory:    "trajectory.xyz",
		},
	}
}

// Validate checks the configuration for missing or out-of-range values.
func (C *Config) Validate() error {
	if err := configValidate.Struct(C); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, v := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q", v.Namespace(), v.Tag()))
			}
			return newError(ErrInvalidConfig, "", "Config.Validate", "%s", strings.Join(msgs, "; "))
		}
		return newError(ErrInvalidConfig, "", "Config.Validate", "%s", err.Error())
	}
	return nil
}

// Criteria returns the convergence thresholds as used by CheckConvergence.
func (C *Config) Criteria() Thresholds {
	return Thresholds{
		MaxDX: float64(C.Thresholds.MaxDisplacement),
		RMSDX: float64(C.Thresholds.RMSDisplacement),
		MaxG:  float64(C.Thresholds.MaxGradient),
		RMSG:  float64(C.Thresholds.RMSGradient),
		DE:    float64(C.Thresholds.EnergyDifference),
	}
}

// Factors returns the effective gradient factors.
func (C *Config) Factors() Factors {
	return Factors{PP: float64(C.FacPP), P: float64(C.FacP)}
}

// LoadConfig reads a YAML configuration file. Keys not present in the
// file keep the values of DefaultConfig. Unknown keys are an error.
func LoadConfig(name string) (*Config, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, newError(ErrInvalidConfig, name, "LoadConfig", "%s", err.Error())
	}
	C := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(C); err != nil {
		return nil, newError(ErrInvalidConfig, name, "LoadConfig", "%s", err.Error())
	}
	if err := C.Validate(); err != nil {
		e := err.(*Error)
		e.filename = name
		return nil, errDecorate(e, "LoadConfig")
	}
	return C, nil
}

// WriteConfig writes C in YAML to the file name.
func WriteConfig(name string, C *Config) error {
	data, err := yaml.Marshal(C)
	if err != nil {
		return newError(ErrInvalidConfig, name, "WriteConfig", "%s", err.Error())
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		return newError(ErrInvalidConfig, name, "WriteConfig", "%s", err.Error())
	}
	return nil
}

// parseFloat also understands the Fortran double precision notation (1.0d-3).
// NaN and infinities are rejected.
func parseFloat(s string) (float64, error) {
	s = strings.NewReplacer("d", "e", "D", "e").Replace(strings.TrimSpace(s))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}
