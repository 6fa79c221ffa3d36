// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gorse-io/lowrank/base"
	"github.com/gorse-io/lowrank/base/log"
	"github.com/gorse-io/lowrank/cmd/version"
	"github.com/gorse-io/lowrank/dataset"
	"github.com/gorse-io/lowrank/loss"
	"github.com/gorse-io/lowrank/model"
	"github.com/gorse-io/lowrank/model/glrm"
	"github.com/gorse-io/lowrank/regularizer"
)

var rootCommand = &cobra.Command{
	Use:   "lowrank",
	Short: "Fit generalized low rank models to partially observed matrices.",
	Run: func(cmd *cobra.Command, args []string) {
		// Show version
		if showVersion, _ := cmd.PersistentFlags().GetBool("version"); showVersion {
			fmt.Println(version.BuildInfo())
			return
		}
		_ = cmd.Help()
	},
}

var fitCommand = &cobra.Command{
	Use:   "fit",
	Short: "Fit a low rank model to a CSV matrix and dump its factors.",
	Run: func(cmd *cobra.Command, args []string) {
		// setup logger
		rootFlags := cmd.Root().PersistentFlags()
		debug, _ := rootFlags.GetBool("debug")
		log.SetLogger(rootFlags, debug)

		// load dataset
		inputPath, _ := cmd.PersistentFlags().GetString("input")
		columns, _ := cmd.PersistentFlags().GetIntSlice("categorical")
		categorical := mapset.NewSet(columns...)
		data, dicts, err := loadDataset(inputPath, categorical)
		if err != nil {
			log.Logger().Fatal("failed to load dataset",
				zap.String("input", inputPath), zap.Error(err))
		}

		// assemble losses
		lossName, _ := cmd.PersistentFlags().GetString("loss")
		scalarLoss, err := newLoss(lossName)
		if err != nil {
			log.Logger().Fatal("unknown loss", zap.String("loss", lossName))
		}
		minLevels, _ := cmd.PersistentFlags().GetInt("levels")
		losses := make([]loss.Loss, data.CountFeatures())
		for j := range losses {
			if categorical.Contains(j) {
				levels := minLevels
				if dict, ok := dicts[j]; ok && dict.Count() > levels {
					levels = dict.Count()
				}
				if levels < 2 {
					log.Logger().Fatal("categorical column with less than two levels",
						zap.Int("column", j))
				}
				losses[j] = loss.NewMultinomial(levels)
			} else {
				losses[j] = scalarLoss
			}
		}

		// assemble regularizers
		lambda, _ := cmd.PersistentFlags().GetFloat32("lambda")
		regXName, _ := cmd.PersistentFlags().GetString("reg-x")
		rx, err := newRegularizer(regXName, lambda)
		if err != nil {
			log.Logger().Fatal("unknown regularizer", zap.String("reg-x", regXName))
		}
		regYName, _ := cmd.PersistentFlags().GetString("reg-y")
		ryOne, err := newRegularizer(regYName, lambda)
		if err != nil {
			log.Logger().Fatal("unknown regularizer", zap.String("reg-y", regYName))
		}

		// create model
		rank, _ := cmd.PersistentFlags().GetInt("rank")
		stepsize, _ := cmd.PersistentFlags().GetFloat32("stepsize")
		maxIter, _ := cmd.PersistentFlags().GetInt("max-iter")
		innerIter, _ := cmd.PersistentFlags().GetInt("inner-iter")
		tol, _ := cmd.PersistentFlags().GetFloat64("tol")
		seed, _ := cmd.PersistentFlags().GetInt64("seed")
		params := model.Params{
			model.Rank:           rank,
			model.Stepsize:       stepsize,
			model.MaxIter:        maxIter,
			model.InnerIter:      innerIter,
			model.ConvergenceTol: tol,
			model.RandomState:    seed,
		}
		if cmd.PersistentFlags().Changed("min-stepsize") {
			minStepsize, _ := cmd.PersistentFlags().GetFloat32("min-stepsize")
			params[model.MinStepsize] = minStepsize
		}
		m, err := glrm.NewGLRM(data, losses, rx, regularizer.Repeat(ryOne, data.CountFeatures()), params)
		if err != nil {
			log.Logger().Fatal("failed to create model", zap.Error(err))
		}
		if svdInit, _ := cmd.PersistentFlags().GetBool("svd-init"); svdInit {
			if err = m.InitSVD(); err != nil {
				log.Logger().Fatal("failed to initialize factors", zap.Error(err))
			}
		}

		// fit model
		jobs, _ := cmd.PersistentFlags().GetInt("jobs")
		verbose, _ := cmd.PersistentFlags().GetInt("verbose")
		history := m.Fit(cmd.Context(), glrm.NewFitConfig().SetJobs(jobs).SetVerbose(verbose))

		// print convergence history
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Iteration", "Time (s)", "Objective"})
		iterations := history.Len() - 2
		for i := 0; i <= iterations; i++ {
			if i == 0 || i == iterations || (verbose > 0 && i%verbose == 0) {
				table.Append([]string{
					strconv.Itoa(i),
					fmt.Sprintf("%.2f", history.Times[i]),
					fmt.Sprintf("%g", history.Objectives[i]),
				})
			}
		}
		table.Render()

		// write factors
		if outputX, _ := cmd.PersistentFlags().GetString("output-x"); outputX != "" {
			if err = writeMatrixCSV(outputX, m.X); err != nil {
				log.Logger().Fatal("failed to write example factors",
					zap.String("output", outputX), zap.Error(err))
			}
		}
		if outputY, _ := cmd.PersistentFlags().GetString("output-y"); outputY != "" {
			if err = writeMatrixCSV(outputY, m.Y); err != nil {
				log.Logger().Fatal("failed to write feature factors",
					zap.String("output", outputY), zap.Error(err))
			}
		}
	},
}

func init() {
	rootCommand.AddCommand(fitCommand)
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().BoolP("version", "v", false, "lowrank version")
	fitCommand.PersistentFlags().StringP("input", "i", "", "path of the input CSV file")
	fitCommand.PersistentFlags().IntSlice("categorical", nil, "zero-based columns holding categorical values")
	fitCommand.PersistentFlags().Int("levels", 0, "number of levels of categorical columns (default inferred from the input)")
	fitCommand.PersistentFlags().String("loss", "quad", "loss of numerical columns (quad, l1, huber, logistic, hinge or poisson)")
	fitCommand.PersistentFlags().String("reg-x", "none", "regularizer of example factors (none, quad, one or nonneg)")
	fitCommand.PersistentFlags().String("reg-y", "none", "regularizer of feature factors (none, quad, one or nonneg)")
	fitCommand.PersistentFlags().Float32("lambda", 1, "scale of regularizers")
	fitCommand.PersistentFlags().Int("rank", 10, "rank of factors")
	fitCommand.PersistentFlags().Float32("stepsize", 1, "initial step size of proximal gradient steps")
	fitCommand.PersistentFlags().Int("max-iter", 100, "maximum number of iterations")
	fitCommand.PersistentFlags().Int("inner-iter", 1, "number of sweeps over each factor per iteration")
	fitCommand.PersistentFlags().Float64("tol", 1e-5, "objective decrease per observed entry to keep iterating")
	fitCommand.PersistentFlags().Float32("min-stepsize", 0, "lower bound of the adaptive step size (default 0.01*stepsize)")
	fitCommand.PersistentFlags().Int64("seed", 0, "random seed of factor initialization")
	fitCommand.PersistentFlags().Bool("svd-init", false, "initialize factors from the truncated SVD of the input")
	fitCommand.PersistentFlags().IntP("jobs", "j", 1, "number of working jobs")
	fitCommand.PersistentFlags().Int("verbose", 10, "number of iterations between progress reports")
	fitCommand.PersistentFlags().String("output-x", "", "path to write example factors as CSV")
	fitCommand.PersistentFlags().String("output-y", "", "path to write feature factors as CSV")
	if err := fitCommand.MarkPersistentFlagRequired("input"); err != nil {
		panic(err)
	}
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}

// loadDataset reads a CSV dataset with a progress bar over the file.
func loadDataset(path string, categorical mapset.Set[int]) (*dataset.Dataset, map[int]*dataset.LevelDict, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	defer file.Close()
	stat, err := file.Stat()
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	pbReader := progressbar.NewReader(file, progressbar.DefaultBytes(
		stat.Size(),
		"Loading "+filepath.Base(path),
	))
	return dataset.ReadCSV(&pbReader, categorical)
}

func newLoss(name string) (loss.Loss, error) {
	switch name {
	case "quad":
		return loss.NewQuadratic(), nil
	case "l1":
		return loss.NewL1(), nil
	case "huber":
		return loss.NewHuber(), nil
	case "logistic":
		return loss.NewLogistic(), nil
	case "hinge":
		return loss.NewHinge(), nil
	case "poisson":
		return loss.NewPoisson(), nil
	default:
		return nil, errors.NotValidf("loss %v", name)
	}
}

func newRegularizer(name string, scale float32) (regularizer.Regularizer, error) {
	switch name {
	case "none":
		return regularizer.NewZero(), nil
	case "quad":
		return regularizer.NewQuad(scale), nil
	case "one":
		return regularizer.NewOne(scale), nil
	case "nonneg":
		return regularizer.NewNonNeg(), nil
	default:
		return nil, errors.NotValidf("regularizer %v", name)
	}
}

func writeMatrixCSV(path string, m *base.Matrix) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Trace(err)
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	for i := 0; i < m.Rows(); i++ {
		fields := lo.Map(m.Row(i), func(v float32, _ int) string {
			return strconv.FormatFloat(float64(v), 'g', -1, 32)
		})
		if _, err = w.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(w.Flush())
}
