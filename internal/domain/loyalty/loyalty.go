package loyalty

// RewardThreshold is the number of completed visits that earns a free service.
const RewardThreshold = 10

// VisitsUntilReward returns 10 both at zero and right after a reward.
func VisitsUntilReward(visits int) int {
	r := visits % RewardThreshold
	if r == 0 {
		return RewardThreshold
	}
	return RewardThreshold - r
}

// IsEligible is false at zero visits even though VisitsUntilReward(0) is 10.
func IsEligible(visits int) bool {
	return visits > 0 && visits%RewardThreshold == 0
}
