/*Package interval parses and represents the genomic regions that bamviz
  queries.
  A Region is a single chromosome plus a 1-based closed [start, end] range, in
  the samtools "chr:start-end" convention.  It assumes every position fits in
  a PosType, which is currently defined as int32 since that's what BAM files
  are limited to.
*/
package interval
