package ur

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/urgym/simulation"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"
)

// GoalSpace describes the components of a goal
type GoalSpace int

const (
	// Position goals hold an end effector position (x, y, z)
	Position GoalSpace = iota

	// Pose goals hold an end effector position followed by a scalar-last
	// quaternion (x, y, z, qx, qy, qz, qw)
	Pose
)

// Len returns the number of components of goals in the goal space
func (g GoalSpace) Len() int {
	if g == Pose {
		return 7
	}
	return 3
}

// RewardType determines whether rewards are sparse or dense
type RewardType string

const (
	// Sparse rewards are 0 on success and -1 otherwise
	Sparse RewardType = "sparse"

	// Dense rewards are a weighted sum of reward terms
	Dense RewardType = "dense"
)

// ParseRewardType returns the RewardType named by s
func ParseRewardType(s string) (RewardType, error) {
	switch RewardType(s) {
	case Sparse, Dense:
		return RewardType(s), nil
	}
	return "", fmt.Errorf("parseRewardType: unknown reward type %q", s)
}

// RewardTerm is a term of a dense reward
type RewardTerm int

const (
	// DistanceTerm is the distance between achieved and desired goal
	// positions
	DistanceTerm RewardTerm = iota

	// ActionTerm is the sum of the absolute values of the last action
	ActionTerm

	// CollisionTerm is 1 if the robot is in collision and 0 otherwise
	CollisionTerm

	// AngleTerm is the normalized geodesic distance between achieved
	// and desired goal orientations
	AngleTerm
)

// RewardConfig configures a task's reward. Dense rewards are the sum of
// the Terms, each multiplied by its weight. Sparse rewards are 0 on
// success and -1 otherwise.
type RewardConfig struct {
	Type  RewardType
	Terms []RewardTerm

	DistanceWeight  float64
	ActionWeight    float64
	CollisionWeight float64
	AngleWeight     float64
}

// BoxConfig places a table-like box whose top face lies at height
// ZOffset
type BoxConfig struct {
	Length, Width, Height float64
	XOffset, ZOffset      float64
}

// SceneConfig describes the static scene of a task
type SceneConfig struct {
	PlaneZ      float64
	Table       BoxConfig
	Track       *BoxConfig
	Camera      simulation.Camera
	TargetColor [4]float64
}

// Obstacle is an axis-aligned box the robot must avoid
type Obstacle struct {
	Name        string
	Position    r3.Vec
	HalfExtents r3.Vec
}

// Variant parameterizes a reach Task
type Variant struct {
	Name  string
	Scene SceneConfig

	GoalSpace         GoalSpace
	GoalLow, GoalHigh r3.Vec

	// Roll and Pitch fix the goal orientation's roll and pitch. Yaw
	// is sampled uniformly from its interval.
	Roll, Pitch float64
	Yaw         r1.Interval

	Reward            RewardConfig
	DistanceThreshold float64
	AngleThreshold    float64

	CollisionAware bool
	Obstacles      []Obstacle
}

// WithRewardType returns a copy of the Variant using rewards of type r
func (v Variant) WithRewardType(r RewardType) Variant {
	v.Reward.Type = r
	v.Reward.Terms = append([]RewardTerm(nil), v.Reward.Terms...)
	v.Obstacles = append([]Obstacle(nil), v.Obstacles...)
	return v
}

// Reach returns the Variant reaching for positions in a box of side 0.3
// around the robot base, which sits on a table
func Reach() Variant {
	const goalRange = 0.3

	return Variant{
		Name: "Reach",
		Scene: SceneConfig{
			PlaneZ:      -0.4,
			Table:       BoxConfig{Length: 1.1, Width: 0.7, Height: 0.4, XOffset: -0.3},
			Camera:      simulation.Camera{Distance: 0.9, Yaw: 45, Pitch: -30},
			TargetColor: [4]float64{0.1, 0.9, 0.1, 0.3},
		},
		GoalSpace: Position,
		GoalLow:   r3.Vec{X: -goalRange / 2, Y: -goalRange / 2, Z: 0},
		GoalHigh:  r3.Vec{X: goalRange / 2, Y: goalRange / 2, Z: goalRange},
		Reward: RewardConfig{
			Type:           Dense,
			Terms:          []RewardTerm{DistanceTerm},
			DistanceWeight: -1,
		},
		DistanceThreshold: 0.05,
	}
}

func iaiScene() SceneConfig {
	return SceneConfig{
		PlaneZ: -1.04,
		Table: BoxConfig{Length: 1.1, Width: 1.8, Height: 0.92, XOffset: 0.5,
			ZOffset: -0.12},
		Track:       &BoxConfig{Length: 0.2, Width: 1.1, Height: 0.12},
		Camera:      simulation.Camera{Distance: 2, Yaw: 60, Pitch: -30},
		TargetColor: [4]float64{0.1, 0.9, 0.1, 1},
	}
}

// ReachIAI returns the Variant reaching for positions in front of a
// robot mounted on a track beside a table
func ReachIAI() Variant {
	const goalRange = 0.8

	return Variant{
		Name:      "ReachIAI",
		Scene:     iaiScene(),
		GoalSpace: Position,
		GoalLow:   r3.Vec{X: 0.2, Y: -goalRange / 2, Z: 0},
		GoalHigh:  r3.Vec{X: 0.2 + goalRange/2, Y: goalRange / 2, Z: goalRange},
		Reward: RewardConfig{
			Type:           Dense,
			Terms:          []RewardTerm{DistanceTerm},
			DistanceWeight: -1,
		},
		DistanceThreshold: 0.05,
	}
}

// ReachWithRegularization returns ReachIAI with dense rewards penalizing
// large actions and collisions
func ReachWithRegularization() Variant {
	v := ReachIAI()
	v.Name = "ReachWithRegularization"
	v.CollisionAware = true
	v.Reward = RewardConfig{
		Type:            Dense,
		Terms:           []RewardTerm{DistanceTerm, ActionTerm, CollisionTerm},
		DistanceWeight:  -20,
		ActionWeight:    -1,
		CollisionWeight: -20,
	}
	return v
}

// ReachWithOrientation returns ReachWithRegularization with goals which
// include an orientation of the end effector pointing down
func ReachWithOrientation() Variant {
	v := ReachWithRegularization()
	v.Name = "ReachWithOrientation"
	v.GoalSpace = Pose
	v.Roll = math.Pi
	v.Pitch = 0
	v.Yaw = r1.Interval{Min: -math.Pi / 2, Max: math.Pi / 2}
	v.AngleThreshold = 0.1
	v.Reward.Terms = append(v.Reward.Terms, AngleTerm)
	v.Reward.AngleWeight = -10
	return v
}

// ReachWithObstacles returns ReachWithOrientation with a box obstacle
// standing on the table. The obstacle is observed.
func ReachWithObstacles() Variant {
	v := ReachWithOrientation()
	v.Name = "ReachWithObstacles"
	v.Obstacles = []Obstacle{
		{
			Name:        "obstacle",
			Position:    r3.Vec{X: 0.45, Y: -0.25, Z: 0.03},
			HalfExtents: r3.Vec{X: 0.05, Y: 0.05, Z: 0.15},
		},
	}
	return v
}
