// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package executor

import (
	"os"

	"github.com/tablecore/belt/belterr"
	"sigs.k8s.io/yaml"
)

// classTuning overrides one WorkloadClass's batch_size/
// threshold_parallel pair.
type classTuning struct {
	BatchSize        int `json:"batchSize,omitempty"`
	ThresholdParallel int `json:"thresholdParallel,omitempty"`
}

// Tuning overrides the compiled-in WorkloadClass constants, keyed by
// class name ("default", "small", "medium", "large", "huge"). It is
// intended for deployment-specific batch-size tuning without a
// rebuild; a deployment with no override file uses the built-in
// defaults.
type Tuning struct {
	Classes map[string]classTuning `json:"classes,omitempty"`
}

var classNames = map[WorkloadClass]string{
	Default: "default",
	Small:   "small",
	Medium:  "medium",
	Large:   "large",
	Huge:    "huge",
}

// LoadTuning reads a YAML tuning file (sigs.k8s.io/yaml converts it
// through JSON so the same struct tags serve both encodings).
func LoadTuning(path string) (*Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// BatchSize returns the tuned batch size for class, falling back to
// the compiled-in default when t is nil or carries no override.
func (t *Tuning) BatchSize(class WorkloadClass) int {
	if o, ok := t.override(class); ok && o.BatchSize > 0 {
		return o.BatchSize
	}
	return class.batchSize()
}

// ThresholdParallel returns the tuned threshold for class, falling
// back to the compiled-in default when t is nil or carries no
// override.
func (t *Tuning) ThresholdParallel(class WorkloadClass) int {
	if o, ok := t.override(class); ok && o.ThresholdParallel > 0 {
		return o.ThresholdParallel
	}
	return class.thresholdParallel()
}

func (t *Tuning) override(class WorkloadClass) (classTuning, bool) {
	if t == nil || t.Classes == nil {
		return classTuning{}, false
	}
	o, ok := t.Classes[classNames[class]]
	return o, ok
}

// RunTuned behaves like Run but resolves class's batch_size/
// threshold_parallel from t instead of the compiled-in defaults.
func RunTuned(host Host, n int, class WorkloadClass, t *Tuning, calc Calculator, progress func(float64)) (any, error) {
	if progress == nil {
		progress = func(float64) {}
	}
	if !host.Active() {
		return nil, belterr.TaskAborted
	}
	batches := planTuned(n, class, t, host.Parallelism())
	calc.Init(len(batches))
	return dispatch(host, batches, calc, progress)
}

func planTuned(n int, class WorkloadClass, t *Tuning, p int) []batchRange {
	if p < 1 {
		p = 1
	}
	if n == 0 {
		return []batchRange{{0, 0}}
	}
	tp := t.ThresholdParallel(class)
	bs := t.BatchSize(class)
	if n < tp {
		return []batchRange{{0, n}}
	}
	if n <= bs*thresholdFactor*p {
		return equalParts(n, p)
	}
	return fixedBatches(n, bs)
}
