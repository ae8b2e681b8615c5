// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/bamviz/encoding/bamprovider"
	"github.com/grailbio/bamviz/pileup"
	"github.com/grailbio/bamviz/visualize"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
)

var (
	bamIndexPath = flag.String("index", visualize.DefaultOpts.Index, "Input BAM index path. Defaults to bampath + .bai")
	format       = flag.String("format", "tsv", "Output format; 'tsv', 'tsv-gz', and 'tsv-bgz' supported")
	maxRegionLen = flag.Int("max-region-len", visualize.DefaultOpts.MaxRegionLen, "Upper bound on the number of positions in the region; 0 = unlimited")
	outPrefix    = flag.String("out", "bio-bamviz", "Output path prefix")
	writeIndex   = flag.Bool("write-index", false, "Build bampath + .bai before querying")
)

type runOpts struct {
	visualize.Opts
	format     string
	outPrefix  string
	writeIndex bool
}

func bioBamvizUsage() {
	fmt.Printf("Usage: %s [OPTIONS] bampath region\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func run(ctx context.Context, bamPath, region string, opts runOpts) error {
	outFormat, err := visualize.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.writeIndex {
		if opts.Index != "" {
			return errors.E(errors.Invalid, "-write-index and -index are mutually exclusive")
		}
		// The index is built only after the path and region have been
		// validated.
		opts.Prepare = func(path string) error {
			return bamprovider.WriteIndex(ctx, path, "")
		}
	}
	v := visualize.New(opts.Opts)
	r := v.Visualize(bamPath, region)
	if !r.OK() {
		return r.Err
	}
	log.Printf("%s: %d reads, max depth %d", r.Region, r.NumRecords, pileup.MaxDepth(r.Coverage))
	return visualize.WriteResult(ctx, r, opts.outPrefix, outFormat)
}

func main() {
	flag.Usage = bioBamvizUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		log.Fatalf("Expected two positional arguments (bampath and region); got '%s'", strings.Join(flag.Args(), " "))
	}
	opts := runOpts{
		Opts:       visualize.DefaultOpts,
		format:     *format,
		outPrefix:  *outPrefix,
		writeIndex: *writeIndex,
	}
	opts.Index = *bamIndexPath
	opts.MaxRegionLen = *maxRegionLen
	if err := run(vcontext.Background(), flag.Arg(0), flag.Arg(1), opts); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
