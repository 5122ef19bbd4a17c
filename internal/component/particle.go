package component

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

// Particle is a point mass.
type Particle struct {
	Position Vec2
	Velocity Vec2
}

// ParticleParameters is the resource holding simulation constants.
type ParticleParameters struct {
	DeltaTime         float64
	Mass              float64
	Count             int
	VelocityVariation float64
	Reset             bool
}

// ParticleStats is refreshed every tick from the live particles.
type ParticleStats struct {
	Count    int
	Centroid Vec2
}
