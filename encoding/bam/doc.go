// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package bam converts between SAM/BAM alignment records, as read and written
// by github.com/grailbio/hts, and reads.SequencingRead.  Records that share a
// name and are adjacent in the input are grouped into one
// reads.QueryTemplate.
package bam
