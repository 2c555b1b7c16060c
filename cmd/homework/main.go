// Command homework decrypts the four fixed coursework ciphertexts. Each
// ciphertext carries its IV in the first 16 bytes.
package main

import (
	"fmt"
	"os"

	"cryptolab/internal/logger"
	"cryptolab/internal/modes"
	"cryptolab/internal/util"
)

var questions = []struct {
	mode modes.Mode
	key  string
	ct   string
}{
	{modes.ModeCBC, "140b41b22a29beb4061bda66b6747e14",
		"4ca00ff4c898d61e1edbf1800618fb2828a226d160dad07883d04e008a7897ee2e4b7465d5290d0c0e6c6822236e1daafb94ffe0c5da05d9476be028ad7c1d81"},
	{modes.ModeCBC, "140b41b22a29beb4061bda66b6747e14",
		"5b68629feb8606f9a6667670b75b38a5b4832d0f26e1ab7da33249de7d4afc48e713ac646ace36e872ad5fb8a512428a6e21364b0c374df45503473c5242a253"},
	{modes.ModeCTR, "36f18357be4dbd77f050515c73fcf9f2",
		"69dda8455c7dd4254bf353b773304eec0ec7702330098ce7f7520d1cbbb20fc388d1b0adb5054dbd7370849dbf0b88d393f252e764f1f5f7ad97ef79d59ce29f5f51eeca32eabedd9afa9329"},
	{modes.ModeCTR, "36f18357be4dbd77f050515c73fcf9f2",
		"770b80259ec33beb2561358a9f2dc617e46218c0a53cbeca695ae45faa8952aa0e311bde9d4e01726d3184c34451"},
}

func main() {
	lg := logger.New(os.Getenv("LOG_LEVEL"))
	defer lg.Sync()
	failed := false
	for i, q := range questions {
		key, err := util.DecodeHex(q.key)
		if err != nil {
			lg.Fatalw("bad key", "question", i+1, "error", err)
		}
		ct, err := util.DecodeHex(q.ct)
		if err != nil {
			lg.Fatalw("bad ciphertext", "question", i+1, "error", err)
		}
		pt, err := modes.DecryptPrefixed(q.mode, key, ct)
		if err != nil {
			lg.Errorw("decrypt failed", "question", i+1, "mode", q.mode, "error", err)
			failed = true
			continue
		}
		fmt.Printf("Q%d (%s): %s\n", i+1, q.mode, pt)
	}
	if failed {
		os.Exit(1)
	}
}
