// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"fmt"
	"io"
)

// DefaultFusekiImage is the Fuseki image started by Up.
const DefaultFusekiImage = "stain/jena-fuseki"

const fusekiPort = 3030

// FusekiOptions configures the local Fuseki container.
type FusekiOptions struct {
	Name          string
	Image         string
	Port          int
	Dataset       string
	AdminPassword string
	// DataDir, when set, is mounted at /fuseki so datasets survive restarts.
	// It must be an absolute path.
	DataDir string
}

func (o FusekiOptions) withDefaults() FusekiOptions {
	if o.Name == "" {
		o.Name = "wikigraph-fuseki"
	}
	if o.Image == "" {
		o.Image = DefaultFusekiImage
	}
	if o.Port == 0 {
		o.Port = fusekiPort
	}
	return o
}

// Spec returns the container spec for o.
func (o FusekiOptions) Spec() Spec {
	o = o.withDefaults()
	s := Spec{
		Name:  o.Name,
		Image: o.Image,
		Ports: map[int]int{o.Port: fusekiPort},
		Env:   map[string]string{},
	}
	if o.Dataset != "" {
		s.Env["FUSEKI_DATASET_1"] = o.Dataset
	}
	if o.AdminPassword != "" {
		s.Env["ADMIN_PASSWORD"] = o.AdminPassword
	}
	if o.DataDir != "" {
		s.Volumes = map[string]string{o.DataDir: "/fuseki"}
	}
	return s
}

// Up starts the Fuseki container unless one with the same name is already
// running, pulling the image first when it is missing. It reports whether
// a new container was started.
func Up(rt Runtime, o FusekiOptions, w io.Writer) (bool, error) {
	o = o.withDefaults()
	running, err := rt.Running(o.Name)
	if err != nil {
		return false, err
	}
	if running {
		fmt.Fprintf(w, "Fuseki container %s already running\n", o.Name)
		return false, nil
	}

	if rt.ImageExists(o.Image) != nil {
		fmt.Fprintf(w, "Pulling %s with %s...\n", o.Image, rt.Name())
		if err := rt.Pull(o.Image, w); err != nil {
			return false, err
		}
	}

	// A stopped container keeps its name reserved.
	_ = rt.Remove(o.Name)

	id, err := rt.Start(o.Spec())
	if err != nil {
		return false, err
	}
	if len(id) > 12 {
		id = id[:12]
	}
	fmt.Fprintf(w, "Started Fuseki container %s (%s) on port %d\n", o.Name, id, o.Port)
	return true, nil
}

// Down removes the named Fuseki container.
func Down(rt Runtime, name string, w io.Writer) error {
	if name == "" {
		name = FusekiOptions{}.withDefaults().Name
	}
	if err := rt.Remove(name); err != nil {
		return err
	}
	fmt.Fprintf(w, "Removed Fuseki container %s\n", name)
	return nil
}
