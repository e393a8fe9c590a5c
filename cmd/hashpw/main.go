// Command hashpw prints a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Dosada05/sabo-arena/utils"
)

func main() {
	password := flag.String("password", "", "password to hash; read from stdin when empty")
	flag.Parse()

	if err := run(*password); err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
}

func run(password string) error {
	if password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
