package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/alitto/pond"
	"github.com/urfave/cli/v2"

	godc "github.com/sixy6e/go-divecomputer"
)

// decodedSample is the JSON-friendly projection of a godc.Sample used by
// the decode/decode-all commands.
type decodedSample struct {
	Type  string  `json:"type"`
	Time  uint32  `json:"time"`
	Depth float64 `json:"depth,omitempty"`
	Temp  float64 `json:"temperature,omitempty"`
}

func sampleTypeName(t godc.SampleType) string {
	switch t {
	case godc.SampleTime:
		return "time"
	case godc.SampleDepth:
		return "depth"
	case godc.SampleTemperature:
		return "temperature"
	case godc.SampleEvent:
		return "event"
	case godc.SampleGasMix:
		return "gasmix"
	default:
		return "other"
	}
}

// decodeFile parses one raw dive blob and writes its sample stream to
// outdir as <basename>.json.
func decodeFile(family godc.Family, model uint32, diveURI, outdirURI string) error {
	data, err := os.ReadFile(diveURI)
	if err != nil {
		return err
	}

	parser, err := godc.BuildParser(family, model)
	if err != nil {
		return err
	}
	if err := parser.SetData(data); err != nil {
		return err
	}

	var samples []decodedSample
	err = godc.SamplesForeachCopy(parser, func(s godc.Sample) error {
		samples = append(samples, decodedSample{
			Type:  sampleTypeName(s.Type),
			Time:  s.Time,
			Depth: s.Depth,
			Temp:  s.Temperature,
		})
		return nil
	})
	if err != nil {
		return err
	}

	_, base := filepath.Split(diveURI)
	outdir := outdirURI
	if outdir == "" {
		outdir, _ = filepath.Split(diveURI)
	}
	out, err := os.Create(filepath.Join(outdir, base+".json"))
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(samples)
}

// decodeDir submits every file under dirURI to a fixed worker pool,
// mirroring the teacher's convert_gsf_list (2*NumCPU workers, cancelled
// on SIGINT).
func decodeDir(family godc.Family, model uint32, dirURI, outdirURI string) error {
	entries, err := os.ReadDir(dirURI)
	if err != nil {
		return err
	}
	log.Println("Number of dives to decode:", len(entries))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	defer pool.StopAndWait()

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := filepath.Join(dirURI, entry.Name())
		pool.Submit(func() {
			if err := decodeFile(family, model, name, outdirURI); err != nil {
				log.Println("error decoding", name, ":", err)
			}
		})
	}
	return nil
}

func familyByName(name string) (godc.Family, error) {
	for f := godc.FamilySuuntoSolution; f <= godc.FamilyCochranCommander; f++ {
		if f.String() == name {
			return f, nil
		}
	}
	return 0, errors.New("unknown family: " + name)
}

func main() {
	app := &cli.App{
		Name:  "divectl",
		Usage: "download and decode dive computer logs",
		Commands: []*cli.Command{
			{
				Name:  "families",
				Usage: "list every supported device family",
				Action: func(cCtx *cli.Context) error {
					for f := godc.FamilySuuntoSolution; f <= godc.FamilyCochranCommander; f++ {
						log.Println(f.String())
					}
					return nil
				},
			},
			{
				Name:  "decode",
				Usage: "decode a single raw dive blob into JSON samples",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "family", Required: true, Usage: "device family name, e.g. \"Suunto D9\""},
					&cli.UintFlag{Name: "model", Usage: "device model byte, for families whose dispatch depends on it"},
					&cli.StringFlag{Name: "dive-uri", Required: true, Usage: "URI or pathname to a raw dive blob."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
				},
				Action: func(cCtx *cli.Context) error {
					family, err := familyByName(cCtx.String("family"))
					if err != nil {
						return err
					}
					return decodeFile(family, uint32(cCtx.Uint("model")), cCtx.String("dive-uri"), cCtx.String("outdir-uri"))
				},
			},
			{
				Name:  "decode-all",
				Usage: "decode every raw dive blob in a directory, concurrently",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "family", Required: true, Usage: "device family name, e.g. \"Suunto D9\""},
					&cli.UintFlag{Name: "model", Usage: "device model byte, for families whose dispatch depends on it"},
					&cli.StringFlag{Name: "uri", Required: true, Usage: "URI or pathname to a directory containing raw dive blobs."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
				},
				Action: func(cCtx *cli.Context) error {
					family, err := familyByName(cCtx.String("family"))
					if err != nil {
						return err
					}
					return decodeDir(family, uint32(cCtx.Uint("model")), cCtx.String("uri"), cCtx.String("outdir-uri"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
