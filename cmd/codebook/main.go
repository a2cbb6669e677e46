// Package main provides the entry point for the codebook CLI.
//
// codebook assembles a codebook document from a CSV data table and a
// metadata file describing its columns: narrative front matter, a data
// dictionary, per-variable statistics and frequency tables, figures, and a
// validation appendix.
//
// Usage:
//
//	codebook build -d data.csv -m metadata.yaml -o codebook.md
//	codebook build --all
//	codebook validate -d data.csv -m metadata.yaml
//
// See --help for all available options.
package main

func main() {
	Execute()
}
