package ur

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/environment"
	"github.com/samuelfneumann/urgym/timestep"
	"github.com/samuelfneumann/urgym/utils/matutils"
	"github.com/samuelfneumann/urgym/utils/metric"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"
)

// TargetName is the name of the marker placed at the goal
const TargetName = "target"

// Scene is the part of a simulation.Simulation used by a Task
type Scene interface {
	CreatePlane(zOffset float64) error
	CreateTable(length, width, height, xOffset, zOffset float64) error
	CreateTrack(length, width, height, xOffset, zOffset float64) error
	CreateBox(name string, halfExtents, position r3.Vec, ghost bool,
		color [4]float64) (string, error)
	CreateSphere(name string, radius float64, position r3.Vec, ghost bool,
		color [4]float64) (string, error)
	SetBasePose(name string, position r3.Vec, orientation quat.Number) error
	NoRendering(f func() error) error
	PlaceVisualizer(target r3.Vec, distance, yaw, pitch float64)
	CheckCollision(robot string, against []string) (bool, error)
}

// Task implements a goal-conditioned reach task. The Variant of a Task
// determines its scene, goal space, reward, and whether it tracks
// collisions.
type Task struct {
	sim     Scene
	robot   Robot
	variant Variant

	sampler   *environment.UniformStarter
	goal      *mat.VecDense
	collision bool
	goalSpec  environment.Spec
	obs       *mat.VecDense

	logger *zap.SugaredLogger
}

// NewTask creates a new reach Task and builds its scene. Goals are
// sampled from a source seeded with seed.
func NewTask(sim Scene, robot Robot, variant Variant, seed uint64,
	logger *zap.SugaredLogger) (*Task, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if variant.GoalSpace == Pose && variant.AngleThreshold <= 0 {
		return nil, errors.Errorf("newTask: variant %v has pose goals but "+
			"no angle threshold", variant.Name)
	}
	if _, err := ParseRewardType(string(variant.Reward.Type)); err != nil {
		return nil, errors.Wrap(err, "newTask")
	}

	bounds := []r1.Interval{
		{Min: variant.GoalLow.X, Max: variant.GoalHigh.X},
		{Min: variant.GoalLow.Y, Max: variant.GoalHigh.Y},
		{Min: variant.GoalLow.Z, Max: variant.GoalHigh.Z},
	}
	if variant.GoalSpace == Pose {
		bounds = append(bounds, variant.Yaw)
	}

	t := &Task{
		sim:      sim,
		robot:    robot,
		variant:  variant,
		sampler:  environment.NewUniformStarter(bounds, seed),
		goalSpec: goalSpec(variant),
		obs:      obstacleObs(variant.Obstacles),
		logger:   logger,
	}

	err := sim.NoRendering(func() error {
		if err := t.createScene(); err != nil {
			return err
		}
		sim.PlaceVisualizer(r3.Vec{}, variant.Scene.Camera.Distance,
			variant.Scene.Camera.Yaw, variant.Scene.Camera.Pitch)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "newTask")
	}
	return t, nil
}

func (t *Task) createScene() error {
	scene := t.variant.Scene
	if err := t.sim.CreatePlane(scene.PlaneZ); err != nil {
		return err
	}

	table := scene.Table
	err := t.sim.CreateTable(table.Length, table.Width, table.Height,
		table.XOffset, table.ZOffset)
	if err != nil {
		return err
	}

	if track := scene.Track; track != nil {
		err := t.sim.CreateTrack(track.Length, track.Width, track.Height,
			track.XOffset, track.ZOffset)
		if err != nil {
			return err
		}
	}

	_, err = t.sim.CreateSphere(TargetName, 0.02, r3.Vec{}, true,
		scene.TargetColor)
	if err != nil {
		return err
	}

	for _, o := range t.variant.Obstacles {
		_, err := t.sim.CreateBox(o.Name, o.HalfExtents, o.Position, false,
			[4]float64{0.9, 0.1, 0.1, 1})
		if err != nil {
			return err
		}
	}
	return nil
}

func goalSpec(v Variant) environment.Spec {
	n := v.GoalSpace.Len()
	lower := mat.NewVecDense(n, nil)
	upper := mat.NewVecDense(n, nil)

	low := []float64{v.GoalLow.X, v.GoalLow.Y, v.GoalLow.Z}
	high := []float64{v.GoalHigh.X, v.GoalHigh.Y, v.GoalHigh.Z}
	for i := 0; i < n; i++ {
		if i < metric.PositionLen {
			lower.SetVec(i, low[i])
			upper.SetVec(i, high[i])
		} else {
			lower.SetVec(i, -1)
			upper.SetVec(i, 1)
		}
	}
	return environment.NewSpec(mat.NewVecDense(n, nil), environment.Goal,
		lower, upper, environment.Continuous)
}

// obstacleObs returns the centre and half extents of each obstacle
func obstacleObs(obstacles []Obstacle) *mat.VecDense {
	if len(obstacles) == 0 {
		return &mat.VecDense{}
	}

	data := make([]float64, 0, 6*len(obstacles))
	for _, o := range obstacles {
		data = append(data, o.Position.X, o.Position.Y, o.Position.Z,
			o.HalfExtents.X, o.HalfExtents.Y, o.HalfExtents.Z)
	}
	return mat.NewVecDense(len(data), data)
}

// Variant returns the Variant of the task
func (t *Task) Variant() Variant {
	return t.variant
}

// Reset samples a new goal, clears the collision flag, and moves the
// target marker to the goal
func (t *Task) Reset() error {
	sample := t.sampler.Start()

	position := r3.Vec{X: sample.AtVec(0), Y: sample.AtVec(1),
		Z: sample.AtVec(2)}
	orientation := quat.Number{Real: 1}

	goal := []float64{position.X, position.Y, position.Z}
	if t.variant.GoalSpace == Pose {
		orientation = metric.FromEuler(t.variant.Roll, t.variant.Pitch,
			sample.AtVec(3))
		goal = append(goal, orientation.Imag, orientation.Jmag,
			orientation.Kmag, orientation.Real)
	}

	t.goal = mat.NewVecDense(len(goal), goal)
	t.collision = false

	if err := t.sim.SetBasePose(TargetName, position, orientation); err != nil {
		return errors.Wrap(err, "reset")
	}
	t.logger.Debugw("sampled goal", "task", t.variant.Name, "goal", goal)
	return nil
}

// Goal returns a copy of the current goal
func (t *Task) Goal() (*mat.VecDense, error) {
	if t.goal == nil {
		return nil, &EnvError{Op: "goal", Err: ErrNoGoal}
	}
	return mat.VecDenseCopyOf(t.goal), nil
}

// Obs returns the task observation: the centre and half extents of
// each obstacle. Tasks without obstacles return an empty vector.
func (t *Task) Obs() *mat.VecDense {
	if t.obs.Len() == 0 {
		return &mat.VecDense{}
	}
	return mat.VecDenseCopyOf(t.obs)
}

// AchievedGoal returns the current pose of the end effector, in the
// representation of the task's goals
func (t *Task) AchievedGoal() (*mat.VecDense, error) {
	pose, err := t.robot.EEPose()
	if err != nil {
		return nil, errors.Wrap(err, "achievedGoal")
	}
	if t.variant.GoalSpace == Pose {
		return pose.Vector(), nil
	}
	return pose.PositionVector(), nil
}

// IsSuccess returns whether the achieved goal lies within the distance
// threshold, and for pose goals the angle threshold, of the desired
// goal
func (t *Task) IsSuccess(achieved, desired mat.Vector) bool {
	d := float64(metric.Distance(achieved, desired))
	if !(d < t.variant.DistanceThreshold) {
		return false
	}
	if t.variant.GoalSpace == Pose {
		a := float64(metric.AngleDistance(achieved, desired))
		return a < t.variant.AngleThreshold
	}
	return true
}

// IsSuccessBatch returns IsSuccess for each row of achieved and desired
func (t *Task) IsSuccessBatch(achieved, desired mat.Matrix) []bool {
	distances := metric.DistanceBatch(achieved, desired)

	var angles []float32
	if t.variant.GoalSpace == Pose {
		angles = metric.AngleDistanceBatch(achieved, desired)
	}

	success := make([]bool, len(distances))
	for i, d := range distances {
		success[i] = float64(d) < t.variant.DistanceThreshold
		if angles != nil {
			success[i] = success[i] &&
				float64(angles[i]) < t.variant.AngleThreshold
		}
	}
	return success
}

// CollisionAware returns whether the task tracks collisions
func (t *Task) CollisionAware() bool {
	return t.variant.CollisionAware
}

// CheckCollision queries the scene for contact between the robot and
// the scene or itself and records the result
func (t *Task) CheckCollision() error {
	if !t.variant.CollisionAware {
		return nil
	}

	collision, err := t.sim.CheckCollision(t.robot.Name(), nil)
	if err != nil {
		return errors.Wrap(err, "checkCollision")
	}
	t.collision = collision
	return nil
}

// Collision returns whether the robot was in collision at the last call
// to CheckCollision since the last Reset
func (t *Task) Collision() bool {
	return t.collision
}

// ComputeReward returns the reward for achieving goal achieved when
// desired was the goal. The collision term of dense rewards uses
// info.Collision and the action term uses the robot's last action.
func (t *Task) ComputeReward(achieved, desired mat.Vector,
	info timestep.Info) float64 {
	if t.variant.Reward.Type == Sparse {
		if t.IsSuccess(achieved, desired) {
			return 0
		}
		return -1
	}

	var angle float64
	if t.variant.GoalSpace == Pose {
		angle = float64(metric.AngleDistance(achieved, desired))
	}
	return t.dense(float64(metric.Distance(achieved, desired)), angle,
		info.Collision)
}

// ComputeRewardBatch returns ComputeReward for each row of achieved
// and desired. If info is nil, no collisions are assumed.
func (t *Task) ComputeRewardBatch(achieved, desired mat.Matrix,
	info []timestep.Info) []float64 {
	rows, _ := achieved.Dims()
	if info != nil && len(info) != rows {
		panic(metric.ErrShape)
	}

	rewards := make([]float64, rows)
	if t.variant.Reward.Type == Sparse {
		for i, success := range t.IsSuccessBatch(achieved, desired) {
			if !success {
				rewards[i] = -1
			}
		}
		return rewards
	}

	distances := metric.DistanceBatch(achieved, desired)
	var angles []float32
	if t.variant.GoalSpace == Pose {
		angles = metric.AngleDistanceBatch(achieved, desired)
	}

	for i := range rewards {
		var angle float64
		if angles != nil {
			angle = float64(angles[i])
		}
		collision := info != nil && info[i].Collision
		rewards[i] = t.dense(float64(distances[i]), angle, collision)
	}
	return rewards
}

func (t *Task) dense(distance, angle float64, collision bool) float64 {
	config := t.variant.Reward

	var reward float64
	for _, term := range config.Terms {
		switch term {
		case DistanceTerm:
			reward += config.DistanceWeight * distance

		case ActionTerm:
			reward += config.ActionWeight * matutils.VecAbsSum(t.robot.Action())

		case CollisionTerm:
			if collision {
				reward += config.CollisionWeight
			}

		case AngleTerm:
			reward += config.AngleWeight * angle
		}
	}
	return float64(float32(reward))
}

// GoalSpec returns the specification of the task's goals
func (t *Task) GoalSpec() environment.Spec {
	return t.goalSpec
}

// RewardRange returns the bounds of the task's rewards
func (t *Task) RewardRange() r1.Interval {
	if t.variant.Reward.Type == Sparse {
		return r1.Interval{Min: -1, Max: 0}
	}
	return r1.Interval{Min: math.Inf(-1), Max: 0}
}
