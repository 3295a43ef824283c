package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Faultbox/skyhull/internal/actor"
	"github.com/Faultbox/skyhull/internal/assets"
	"github.com/Faultbox/skyhull/internal/flight"
	"github.com/Faultbox/skyhull/internal/heightfield"
	"github.com/Faultbox/skyhull/internal/scene"
	"github.com/Faultbox/skyhull/pkg/math"
)

func runCmd() *cobra.Command {
	var (
		duration   time.Duration
		step       time.Duration
		archetypes string
	)

	cmd := &cobra.Command{
		Use:   "run [scene.yaml]",
		Short: "Step a scene at a fixed rate and report where every actor ends up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScene(cmd.OutOrStdout(), args[0], archetypes, duration, step)
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 10*time.Second, "Simulated time")
	cmd.Flags().DurationVar(&step, "step", time.Second/60, "Fixed step")
	cmd.Flags().StringVar(&archetypes, "archetypes", "", "Archetype directory overriding the scene's")
	return cmd
}

func runScene(out io.Writer, path, archetypes string, duration, step time.Duration) error {
	if step <= 0 {
		return fmt.Errorf("step must be positive, got %v", step)
	}

	var reg *flight.Registry
	if archetypes != "" {
		var err error
		if reg, err = flight.LoadRegistry(archetypes); err != nil {
			return err
		}
	}

	store := assets.NewManager()
	defer store.Close()

	s, err := scene.Load(path, reg, scene.WithFixedStep(step), scene.WithAssets(store))
	if err != nil {
		return err
	}
	defer s.Close()

	dt := float32(step.Seconds())
	steps := int(duration / step)
	for range steps {
		s.Step(dt)
	}

	fmt.Fprintf(out, "scene %s: %d steps, %s simulated, %d shots\n", s.Name, s.Frames(), s.Elapsed().Round(time.Millisecond), s.Shots())
	writeActors(out, s.Actors.Actors())
	return nil
}

func writeActors(out io.Writer, actors []*actor.Actor) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tARCHETYPE\tPLAYER\tSTATE\tX\tY\tZ\tYAW\tSPEED\tGROUND")
	for _, a := range actors {
		p := a.Transform.Position
		c := a.Controller()
		fmt.Fprintf(tw, "%d\t%s\t%t\t%s\t%.2f\t%.2f\t%.2f\t%.3f\t%.2f\t%t\n",
			a.ID(), a.Archetype(), a.IsPlayer(), a.State(),
			p.X, p.Y, p.Z, a.Transform.Yaw, c.GroundVelocity().Length(), c.OnGround())
	}
	tw.Flush()
}

// heightmapFlags are shared by the query commands.
type heightmapFlags struct {
	bounds string
	sea    float32
	scene  string
}

func (f *heightmapFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.bounds, "bounds", "0,0,0,1000,255,1000", "Footprint as minX,minY,minZ,maxX,maxY,maxZ")
	cmd.Flags().Float32Var(&f.sea, "sea", 0, "Sea level")
	cmd.Flags().StringVar(&f.scene, "scene", "", "Take heightmap, bounds and sea level from a scene descriptor")
}

func (f *heightmapFlags) load(heightmap string) (*heightfield.HeightField, error) {
	if f.scene != "" {
		s, err := scene.Load(f.scene, nil)
		if err != nil {
			return nil, err
		}
		return s.HeightField, nil
	}
	if heightmap == "" {
		return nil, fmt.Errorf("a heightmap argument or --scene is required")
	}
	v, err := parseFloats(f.bounds, 6)
	if err != nil {
		return nil, fmt.Errorf("--bounds: %w", err)
	}
	box := math.NewBox(math.Vec3{X: v[0], Y: v[1], Z: v[2]}, math.Vec3{X: v[3], Y: v[4], Z: v[5]})
	return heightfield.Load(heightmap, box, f.sea)
}

func probeCmd() *cobra.Command {
	var (
		hm  heightmapFlags
		lod int
	)

	cmd := &cobra.Command{
		Use:   "probe [heightmap] x,z [x,z...]",
		Short: "Print the interpolated ground height at points",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			heightmap, points := splitHeightmapArg(args, hm.scene != "")
			hf, err := hm.load(heightmap)
			if err != nil {
				return err
			}
			return probe(cmd.OutOrStdout(), hf, points, lod)
		},
	}

	hm.register(cmd)
	cmd.Flags().IntVar(&lod, "lod", 0, "Pyramid level to sample")
	return cmd
}

func probe(out io.Writer, hf *heightfield.HeightField, points []string, lod int) error {
	if len(points) == 0 {
		return fmt.Errorf("no points given")
	}
	for _, arg := range points {
		v, err := parseFloats(arg, 2)
		if err != nil {
			return fmt.Errorf("point %q: %w", arg, err)
		}
		p := math.Vec3{X: v[0], Z: v[1]}
		fmt.Fprintf(out, "%.3f,%.3f\t%.3f\n", p.X, p.Z, hf.SampleBilinear(p, lod))
	}
	return nil
}

func rayCmd() *cobra.Command {
	var (
		hm          heightmapFlags
		maxDistance float32
		lod         int
	)

	cmd := &cobra.Command{
		Use:   "ray [heightmap] x,y,z dx,dy,dz",
		Short: "Cast a ray against the terrain and print the first hit",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			heightmap, rest := splitHeightmapArg(args, hm.scene != "")
			if len(rest) != 2 {
				return fmt.Errorf("want a start point and a direction")
			}
			start, err := parseVec3(rest[0])
			if err != nil {
				return fmt.Errorf("start: %w", err)
			}
			dir, err := parseVec3(rest[1])
			if err != nil {
				return fmt.Errorf("direction: %w", err)
			}
			hf, err := hm.load(heightmap)
			if err != nil {
				return err
			}
			return castRay(cmd.OutOrStdout(), hf, start, dir, maxDistance, lod)
		},
	}

	hm.register(cmd)
	cmd.Flags().Float32Var(&maxDistance, "max", actor.CheckTargetDistanceMax, "Maximum ray length")
	cmd.Flags().IntVar(&lod, "lod", 0, "Finest level the march may start on")
	return cmd
}

func castRay(out io.Writer, hf *heightfield.HeightField, start, dir math.Vec3, maxDistance float32, lod int) error {
	hit, ok := hf.RayCollision(start, dir, maxDistance, lod)
	if !ok {
		fmt.Fprintln(out, "no hit")
		return nil
	}
	fmt.Fprintf(out, "hit %.3f,%.3f,%.3f distance %.3f\n", hit.X, hit.Y, hit.Z, hit.Distance(start))
	return nil
}

// splitHeightmapArg separates the optional leading heightmap path from the
// remaining arguments. With --scene there is no heightmap argument.
func splitHeightmapArg(args []string, fromScene bool) (string, []string) {
	if fromScene || len(args) == 0 {
		return "", args
	}
	return args[0], args[1:]
}

func parseVec3(s string) (math.Vec3, error) {
	v, err := parseFloats(s, 3)
	if err != nil {
		return math.Vec3{}, err
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func parseFloats(s string, n int) ([]float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated numbers, got %d", n, len(parts))
	}
	out := make([]float32, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}
