package envconfig

import (
	"encoding/json"
	"testing"

	"github.com/samuelfneumann/urgym/environment/ur"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestIDs(t *testing.T) {
	test.That(t, IDs(), test.ShouldResemble, []string{
		"UR5IAIReach-v1",
		"UR5ObsReach-v1",
		"UR5OriReach-v1",
		"UR5Reach-v1",
		"UR5RegReach-v1",
	})
}

func TestDecodeOptions(t *testing.T) {
	opts, err := DecodeOptions(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, opts, test.ShouldResemble, DefaultOptions())
	test.That(t, opts.RewardType, test.ShouldEqual, "sparse")

	opts, err = DecodeOptions(map[string]interface{}{
		"render":            true,
		"reward_type":       "dense",
		"control_type":      "joints",
		"seed":              "12",
		"max_episode_steps": 50,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, opts, test.ShouldResemble, Options{
		Render:          true,
		RewardType:      "dense",
		ControlType:     "joints",
		Seed:            12,
		MaxEpisodeSteps: 50,
	})

	_, err = DecodeOptions(map[string]interface{}{"gravity": -9.8})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig("UR5Push-v1", nil)
	test.That(t, err, test.ShouldNotBeNil)

	c, err := NewConfig(ReachOrientation, map[string]interface{}{"seed": 3})
	test.That(t, err, test.ShouldBeNil)

	envConfig, err := c.EnvConfig()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, envConfig.Variant.Name, test.ShouldEqual, "ReachWithOrientation")
	test.That(t, envConfig.Variant.Reward.Type, test.ShouldEqual, ur.Sparse)
	test.That(t, envConfig.Robot.Orientation, test.ShouldBeTrue)
	test.That(t, envConfig.Robot.Control, test.ShouldEqual, ur.EndEffector)
	test.That(t, envConfig.Seed, test.ShouldEqual, uint64(3))

	c.RewardType = "shaped"
	_, err = c.EnvConfig()
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConfigJSON(t *testing.T) {
	c, err := NewConfig(ReachRegularized, map[string]interface{}{
		"reward_type": "dense",
	})
	test.That(t, err, test.ShouldBeNil)

	data, err := json.Marshal(c)
	test.That(t, err, test.ShouldBeNil)

	var decoded Config
	test.That(t, json.Unmarshal(data, &decoded), test.ShouldBeNil)
	test.That(t, decoded, test.ShouldResemble, c)

	var fields map[string]interface{}
	test.That(t, json.Unmarshal(data, &fields), test.ShouldBeNil)
	test.That(t, fields["reward_type"], test.ShouldEqual, "dense")
}

func TestMake(t *testing.T) {
	for _, c := range []struct {
		id          string
		obs, action int
		goal        int
	}{
		{"UR5Reach-v1", 6, 3, 3},
		{"UR5IAIReach-v1", 6, 3, 3},
		{"UR5RegReach-v1", 12, 3, 3},
		{"UR5OriReach-v1", 10, 6, 7},
		{"UR5ObsReach-v1", 16, 6, 7},
	} {
		env, err := Make(c.id, nil, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, env.ObservationSpec().Len(), test.ShouldEqual, c.obs)
		test.That(t, env.ActionSpec().Len(), test.ShouldEqual, c.action)
		test.That(t, env.GoalSpec().Len(), test.ShouldEqual, c.goal)
		test.That(t, env.MaxEpisodeSteps(), test.ShouldEqual, ur.DefaultMaxEpisodeSteps)

		step, err := env.Reset()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, step.Observation.Len(), test.ShouldEqual, c.obs)
		test.That(t, env.Close(), test.ShouldBeNil)
	}

	env, err := Make("UR5Reach-v1", map[string]interface{}{
		"control_type":      "joints",
		"max_episode_steps": 5,
	}, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, env.ActionSpec().Len(), test.ShouldEqual, 6)
	test.That(t, env.MaxEpisodeSteps(), test.ShouldEqual, 5)

	_, err = Make("UR5Reach-v1", map[string]interface{}{"control_type": "torque"},
		nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCreate(t *testing.T) {
	c, err := NewConfig(ReachIAI, map[string]interface{}{"seed": 7})
	test.That(t, err, test.ShouldBeNil)

	env, step, err := c.Create(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, step.First(), test.ShouldBeTrue)
	test.That(t, env.Running(), test.ShouldBeTrue)

	// Same seed, same goal
	other, otherStep, err := c.Create(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, otherStep.DesiredGoal.RawVector().Data, test.ShouldResemble,
		step.DesiredGoal.RawVector().Data)

	step, _, err = env.Step(mat.NewVecDense(3, nil))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, step.Number, test.ShouldEqual, 1)

	test.That(t, env.Close(), test.ShouldBeNil)
	test.That(t, other.Close(), test.ShouldBeNil)
}

func TestRegister(t *testing.T) {
	err := Register(Reach, Entry{Variant: ur.Reach})
	test.That(t, err, test.ShouldNotBeNil)

	err = Register("UR5Empty-v1", Entry{})
	test.That(t, err, test.ShouldNotBeNil)
}
