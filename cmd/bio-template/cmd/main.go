// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package cmd implements the bio-template tool, which converts, filters,
// trims and summarizes files of query templates.
package cmd

import (
	"flag"
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/cmdline"
)

const formatHelp = `File formats are inferred from the path extension, ignoring a trailing ".gz" or ".sz":
".rio" for template files, ".sam", ".bam", and ".fastq" or ".fq".`

// addConvertFlags registers the flags shared by the commands that rewrite a
// file.
func addConvertFlags(flags *flag.FlagSet, opts *convertOpts) {
	flags.StringVar(&opts.format, "format", "", `Output file format: "rio", "sam", "bam" or "fastq".
If empty, the format is guessed from destpath.`)
	flags.StringVar(&opts.inR2Path, "r2", "", "R2 FASTQ input. srcpath is then the R1 input")
	flags.StringVar(&opts.outR2Path, "out-r2", "", "R2 FASTQ output. destpath is then the R1 output")
	flags.StringVar(&opts.filter, "filter", "", filterHelp)
	flags.BoolVar(&opts.uncompressed, "uncompressed", false, "Do not compress template files")
}

func newCmdConvert() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "convert",
		Short:    "Convert between template, SAM, BAM and FASTQ files",
		Long:     formatHelp,
		ArgsName: "srcpath destpath",
	}
	opts := convertOpts{}
	addConvertFlags(&cmd.Flags, &opts)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("convert takes srcpath destpath, but found %v", argv)
		}
		return convert(vcontext.Background(), argv[0], argv[1], opts)
	})
	return cmd
}

func newCmdTrim() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "trim",
		Short:    "Trim low-quality bases from the 3' end of every read",
		Long:     formatHelp,
		ArgsName: "srcpath destpath",
	}
	opts := trimOpts{}
	cmd.Flags.IntVar(&opts.threshold, "threshold", 20, "Lowest phred score kept at the end of a read")
	cmd.Flags.IntVar(&opts.offset, "offset", 33, "ASCII offset of quality scores")
	addConvertFlags(&cmd.Flags, &opts.convertOpts)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("trim takes srcpath destpath, but found %v", argv)
		}
		return trim(vcontext.Background(), argv[0], argv[1], opts)
	})
	return cmd
}

func newCmdFlagstat() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "flagstat",
		Short:    "Show read flag stats of a file. This command is a clone of 'samtools flagstat'.",
		Long:     formatHelp,
		ArgsName: "path",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("flagstat takes one pathname argument, but got %v", argv)
		}
		return flagstat(vcontext.Background(), argv[0], env.Stdout)
	})
	return cmd
}

func newCmdChecksum() *cmdline.Command {
	cmd := &cmdline.Command{
		Name: "checksum",
		Short: `Compute a checksum of a file.
The checksum is a JSON string describing the summary of various attributes of the reads.
It does not depend on the order of the reads, so files converted between formats
have the same checksum.`,
		ArgsName: "path",
	}
	opts := checksumOpts{}
	cmd.Flags.StringVar(&opts.hash, "hash", "seahash", `Hash function: "seahash", "farm" or "highway"`)
	cmd.Flags.BoolVar(&opts.name, "name", false, "Checksum the name field")
	cmd.Flags.BoolVar(&opts.seq, "seq", false, "Checksum the bases")
	cmd.Flags.BoolVar(&opts.cigar, "cigar", false, "Checksum the cigar field")
	cmd.Flags.BoolVar(&opts.props, "props", false, "Checksum the properties")
	cmd.Flags.BoolVar(&opts.mapQ, "mapq", false, "Checksum the mapq field")
	cmd.Flags.BoolVar(&opts.matePos, "matePos", false, "Checksum the next reference and position fields")
	cmd.Flags.BoolVar(&opts.qual, "qual", false, "Checksum the qual fields")
	cmd.Flags.BoolVar(&opts.all, "all", false, "Checksum the all the fields")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("checksum takes a path, but found %v", argv)
		}
		return checksum(vcontext.Background(), argv[0], opts, env.Stdout)
	})
	return cmd
}

func newCmdStats() *cmdline.Command {
	cmd := &cmdline.Command{
		Name: "stats",
		Short: `Print per-template stats as TSV: name, read count, span, GC content,
and the edit distance between the bases of properly paired mates`,
		Long:     formatHelp,
		ArgsName: "path",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("stats takes one pathname argument, but got %v", argv)
		}
		return stats(vcontext.Background(), argv[0], env.Stdout)
	})
	return cmd
}

// Run runs the bio-template command line.
func Run() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-template",
			Short:    "Tools for working with files of query templates",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdConvert(),
				newCmdTrim(),
				newCmdFlagstat(),
				newCmdChecksum(),
				newCmdStats(),
			},
		})
}
