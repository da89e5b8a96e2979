package core

import (
	"fmt"
	"regexp"
)

// refseqCommentPattern matches the standard RefSeq provenance comment, e.g.
// "PROVISIONAL REFSEQ: This record has not yet been subject to final NCBI
// review. The reference sequence was derived from AF304460."
var refseqCommentPattern = regexp.MustCompile(`(\w+ REFSEQ): [\w ]+\. [\w ]+ (\w+)\.`)

// ParseRefSeqComment extracts the review status and the superseded
// predecessor accession from a standard RefSeq comment.
func ParseRefSeqComment(comment string) (status, predecessor string, err error) {
	if comment == "" {
		return "", "", fmt.Errorf("empty comment")
	}
	match := refseqCommentPattern.FindStringSubmatch(comment)
	if match == nil {
		return "", "", fmt.Errorf("invalid RefSeq comment")
	}
	return match[1], match[2], nil
}
