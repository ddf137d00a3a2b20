/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Command rtx inspects type declarations: it loads manifests into a
// context, optionally autoloading further types from a directory, and
// answers existence, listing, field and instance-of queries.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"dirpx.dev/rtx"
	"dirpx.dev/rtx/config"
	"dirpx.dev/rtx/descriptor"
	"dirpx.dev/rtx/manifest"
	"dirpx.dev/rtx/objects"
)

// CLI is the command line of rtx.
type CLI struct {
	Manifest    []string `help:"Manifest files to declare before running the command." short:"m"`
	AutoloadDir string   `help:"Directory to autoload type manifests from." name:"autoload-dir" type:"existingdir"`
	EnvFile     string   `help:"Env file with RTX_* settings." name:"env-file" default:".env"`
	LogLevel    string   `help:"Log level." name:"log-level" enum:"debug,info,warn,error" default:"warn"`

	List   ListCmd   `cmd:"" help:"List declared type names."`
	Exists ExistsCmd `cmd:"" help:"Report whether a type name resolves."`
	Vars   VarsCmd   `cmd:"" help:"Instantiate a class and print the fields visible from a caller."`
	Isa    IsaCmd    `cmd:"" help:"Report whether an instance of a class is an instance of a target type."`
}

// env is bound into every command's Run method.
type env struct {
	ctx context.Context
	rt  *rtx.Context
	out io.Writer
}

// ListCmd lists declared classes and interfaces.
type ListCmd struct {
	Kind string `help:"Kind of type to list." enum:"class,interface,all" default:"all"`
}

// Run prints one "kind<TAB>name" line per declared type.
func (c *ListCmd) Run(e *env) error {
	if c.Kind != "interface" {
		for _, name := range e.rt.DeclaredClasses() {
			fmt.Fprintf(e.out, "%s\t%s\n", descriptor.KindClass, name)
		}
	}
	if c.Kind != "class" {
		for _, name := range e.rt.DeclaredInterfaces() {
			fmt.Fprintf(e.out, "%s\t%s\n", descriptor.KindInterface, name)
		}
	}
	return nil
}

// ExistsCmd resolves a type name.
type ExistsCmd struct {
	Name       string `arg:"" help:"Type name."`
	NoAutoload bool   `help:"Do not trigger autoloading." name:"no-autoload"`
}

// Run prints "false", or "true" followed by the kind and canonical name.
func (c *ExistsCmd) Run(e *env) error {
	d, ok := e.rt.Resolve(e.ctx, c.Name, !c.NoAutoload)
	if !ok {
		fmt.Fprintln(e.out, "false")
		return nil
	}
	fmt.Fprintf(e.out, "true\t%s\t%s\n", d.Kind(), d.Name())
	return nil
}

// VarsCmd prints the fields of a new instance as seen from a caller.
type VarsCmd struct {
	Class  string            `arg:"" help:"Class to instantiate."`
	Caller string            `help:"Type whose scope the fields are read from. Empty is the global scope."`
	Set    map[string]string `help:"Property values to assign, as name=value." short:"s"`
}

// Run prints one "name=value" line per visible field.
func (c *VarsCmd) Run(e *env) error {
	obj, err := instantiate(e.ctx, e.rt, c.Class)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(c.Set))
	for k := range c.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		obj.Set(k, c.Set[k])
	}
	for _, p := range e.rt.ObjectVarsFrom(obj, c.Caller) {
		fmt.Fprintf(e.out, "%s=%v\n", p.Name, p.Value)
	}
	return nil
}

// IsaCmd checks a new instance against a target type.
type IsaCmd struct {
	Class    string `arg:"" help:"Class to instantiate."`
	Target   string `arg:"" help:"Target class or interface."`
	Subclass bool   `help:"Exclude the class itself."`
}

// Run prints true or false.
func (c *IsaCmd) Run(e *env) error {
	obj, err := instantiate(e.ctx, e.rt, c.Class)
	if err != nil {
		return err
	}
	var ok bool
	if c.Subclass {
		if ok, err = e.rt.IsSubclassOf(e.ctx, obj, c.Target, false); err != nil {
			return err
		}
	} else {
		ok = e.rt.IsInstanceOf(obj, c.Target)
	}
	fmt.Fprintln(e.out, ok)
	return nil
}

func instantiate(ctx context.Context, rt *rtx.Context, class string) (*objects.Object, error) {
	d, ok := rt.Resolve(ctx, class, true)
	if !ok {
		return nil, fmt.Errorf("type %q not found", class)
	}
	if d.IsPropertyBag() {
		return objects.NewBag(), nil
	}
	return objects.New(d)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "rtx: %v\n", err)
		os.Exit(1)
	}
}

// run parses args and executes the selected command.
func run(args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("rtx"),
		kong.Description("Inspect runtime type declarations."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if err := godotenv.Load(cli.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", cli.EnvFile, err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cli.LogLevel))); err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	rt, err := rtx.New(rtx.WithConfig(cfg), rtx.WithLogger(logger))
	if err != nil {
		return err
	}
	if cli.AutoloadDir != "" {
		if err := rt.SetAutoloader(manifest.NewDirLoader(cli.AutoloadDir, rt, logger)); err != nil {
			return err
		}
	}
	ctx := context.Background()
	for _, path := range cli.Manifest {
		m, err := manifest.Load(path)
		if err != nil {
			return err
		}
		if err := m.Apply(ctx, rt); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	return kctx.Run(&env{ctx: ctx, rt: rt, out: stdout})
}
