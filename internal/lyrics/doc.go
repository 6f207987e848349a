// Package lyrics turns reference lyric text into word tokens and renders
// timed word streams back out as LRC.
//
// Reference text usually comes from a lyrics site pasted into a file, so
// Clean strips the artifacts those pages leave behind before Parse removes
// bracketed section headers and tokenizes each line.
package lyrics
