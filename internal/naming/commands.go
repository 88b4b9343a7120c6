package naming

import "fmt"

// ImageCommands groups the container commands suggested for a generated
// project. They are printed for the user; nothing here executes them.
type ImageCommands struct {
	Build  []string
	Run    []string
	Manage []string
	Debug  []string
}

// CommandsFor builds the suggested commands for image, naming containers
// after base.
func CommandsFor(image, base string) ImageCommands {
	container := base + "-strategy"
	return ImageCommands{
		Build: []string{
			fmt.Sprintf("docker build -t %s:latest .", image),
			fmt.Sprintf("docker build -t %s:v1.0.0 .", image),
		},
		Run: []string{
			fmt.Sprintf("docker run --rm %s:latest", image),
			fmt.Sprintf("docker run --rm -e IMBALANCE_THRESHOLD=0.7 %s:latest", image),
			fmt.Sprintf("docker run -d --name %s %s:latest", container, image),
		},
		Manage: []string{
			fmt.Sprintf("docker logs %s", container),
			fmt.Sprintf("docker stop %s", container),
			fmt.Sprintf("docker rm %s", container),
			fmt.Sprintf("docker images %s", image),
		},
		Debug: []string{
			fmt.Sprintf("docker run --rm -it %s:latest /bin/sh", image),
			fmt.Sprintf("docker exec -it %s /bin/sh", container),
		},
	}
}

// All returns every command in display order.
func (c ImageCommands) All() []string {
	out := make([]string, 0, len(c.Build)+len(c.Run)+len(c.Manage)+len(c.Debug))
	out = append(out, c.Build...)
	out = append(out, c.Run...)
	out = append(out, c.Manage...)
	return append(out, c.Debug...)
}
