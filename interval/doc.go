/*Package interval implements 1-based, closed ranges of genomic positions.
  A range is either stored, with its own first position and length, or
  derived, with a length computed on demand from the sequence it describes.
  Positions are int32, as in BAM files.
*/
package interval
