package opengl

// A viewport is a rectangle delimiting the area of simulation space shown on screen.
// The first point is the bottom left corner, the second point is the top right corner.
type viewport [2]struct{ X, Y float32 }

func newViewport(conf *Config) viewport {
	return viewport{{float32(conf.Xmin), float32(conf.Ymin)}, {float32(conf.Xmax), float32(conf.Ymax)}}
}

// zoom scales the viewport by a factor 1+z around the point (x, y)
// given as a fraction of the window size, origin at the bottom left.
func (vp *viewport) zoom(x, y, z float32) {
	dx, dy := vp[1].X-vp[0].X, vp[1].Y-vp[0].Y
	vp[0].X += z * -(x * dx)
	vp[0].Y += z * -(y * dy)
	vp[1].X += z * (1 - x) * dx
	vp[1].Y += z * (1 - y) * dy
}

// cycle moves the focal boid index by step over [-1, n-1],
// -1 meaning no focal boid.
func cycle(focal, step, n int) int {
	return ((focal+1+step)%(n+1)+n+1)%(n+1) - 1
}
