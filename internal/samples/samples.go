// Package samples provides the built-in problems used when the backend is
// unreachable.
package samples

import "github.com/verte-zerg/jsoj/internal/model"

// Problems returns a fresh copy of the sample set.
func Problems() []model.Problem {
	return []model.Problem{
		{
			ID:         "1",
			Title:      "Two Sum",
			Difficulty: model.Easy,
			Description: "Given an array of integers `nums` and an integer `target`, return the indices " +
				"of the two numbers that add up to `target`.\n\n" +
				"Each input has exactly one solution, and the same element may not be used twice.",
			Examples: []model.Example{
				{
					Input:       "nums = [2,7,11,15], target = 9",
					Output:      "[0,1]",
					Explanation: "nums[0] + nums[1] == 9, so the answer is [0, 1]",
				},
			},
			Constraints: []string{
				"2 <= nums.length <= 10^4",
				"-10^9 <= nums[i] <= 10^9",
				"-10^9 <= target <= 10^9",
			},
			Template: "/**\n * @param {number[]} nums\n * @param {number} target\n * @return {number[]}\n */\n" +
				"function twoSum(nums, target) {\n    // write your code here\n    \n}",
		},
		{
			ID:          "2",
			Title:       "Array unique",
			Difficulty:  model.Easy,
			Description: "Implement a function that removes duplicates from an array and returns a new array.",
			Examples: []model.Example{
				{Input: "[1, 2, 2, 3, 4, 4, 5]", Output: "[1, 2, 3, 4, 5]"},
			},
			Template: "/**\n * @param {any[]} arr\n * @return {any[]}\n */\n" +
				"function unique(arr) {\n    // write your code here\n    \n}",
		},
	}
}
