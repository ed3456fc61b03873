package main

import (
	"os"

	"github.com/hknutzen/asaconv/pkg/asa"
	"github.com/hknutzen/asaconv/pkg/oslink"
)

func main() {
	os.Exit(asa.ConvertMain(oslink.Get()))
}
